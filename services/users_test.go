package services

import (
	"context"
	"errors"
	"testing"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.users.Register(ctx, RegisterInput{Name: "Amina", Email: " Amina@Example.com ", Password: "longenough", Role: models.RoleTeacher})
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "amina@example.com" || u.Role != models.RoleTeacher || u.Status != models.StatusActive || u.Points != 0 {
		t.Fatalf("registered = %+v", u)
	}
	if _, err := env.users.Register(ctx, RegisterInput{Name: "Amina", Email: "amina@example.com", Password: "longenough"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate err = %v", err)
	}
	if _, err := env.users.Login(ctx, "AMINA@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password err = %v", err)
	}
	if _, err := env.users.Login(ctx, "nobody@example.com", "longenough"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}
	if got, err := env.users.Login(ctx, "amina@example.com", "longenough"); err != nil || got.ID != u.ID {
		t.Fatalf("login = %v %v", got, err)
	}

	if err := env.store.SetStatus(ctx, u.ID, models.StatusBanned, false); err != nil {
		t.Fatal(err)
	}
	if _, err := env.users.Login(ctx, "amina@example.com", "longenough"); !errors.Is(err, ErrAccountBanned) {
		t.Fatalf("banned login err = %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.Register(context.Background(), RegisterInput{Name: "A", Email: "not-an-email", Password: "short", Role: models.RoleAdmin})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v", err)
	}
	for _, f := range []string{"name", "email", "password", "role"} {
		if _, ok := verr.Fields[f]; !ok {
			t.Errorf("missing field error for %s in %v", f, verr.Fields)
		}
	}
}

func TestAdminEmailRegistersAdmin(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.users.Register(context.Background(), RegisterInput{Name: "Head", Email: "HEAD@edulink.ug", Password: "longenough"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != models.RoleAdmin {
		t.Fatalf("role = %s", u.Role)
	}
}

func TestReinstateResetsStrikes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, _ := env.newUser(t, models.RoleStudent, false)
	_, admin := env.newUser(t, models.RoleAdmin, false)
	_, teacher := env.newUser(t, models.RoleTeacher, true)
	for i := 0; i < 3; i++ {
		if _, err := env.store.AddStrike(ctx, u.ID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := env.users.SetStatus(ctx, teacher, u.ID, models.StatusActive); !errors.Is(err, ErrForbidden) {
		t.Fatalf("teacher set status err = %v", err)
	}
	if _, err := env.users.SetStatus(ctx, admin, u.ID, models.StatusSuspended); err != nil {
		t.Fatal(err)
	}
	got, err := env.users.SetStatus(ctx, admin, u.ID, models.StatusActive)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusActive || got.Strikes != 0 {
		t.Fatalf("reinstated = status %s strikes %d", got.Status, got.Strikes)
	}
}

func TestVerifyTeacher(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher, _ := env.newUser(t, models.RoleTeacher, false)
	student, _ := env.newUser(t, models.RoleStudent, false)
	_, admin := env.newUser(t, models.RoleAdmin, false)

	if _, err := env.users.VerifyTeacher(ctx, admin, student.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("verify student err = %v", err)
	}
	got, err := env.users.VerifyTeacher(ctx, admin, teacher.ID)
	if err != nil || !got.Verified {
		t.Fatalf("verify = %v %v", got, err)
	}
	if !env.reload(t, teacher.ID).IsVerifiedTeacher() {
		t.Fatal("teacher not verified in store")
	}
}

func TestUpdateProfileModeratesBio(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, p := env.newUser(t, models.RoleStudent, false)

	bio := "I love <b>chemistry</b>"
	got, err := env.users.UpdateProfile(ctx, p, ProfileInput{Bio: &bio, Subjects: []string{"Chemistry", "Chemistry", "Math"}})
	if err != nil {
		t.Fatal(err)
	}
	if got.Bio != "I love chemistry" || len(got.Subjects) != 2 {
		t.Fatalf("profile = %q %v", got.Bio, got.Subjects)
	}
	bad := "buy answers from me"
	if _, err := env.users.UpdateProfile(ctx, p, ProfileInput{Bio: &bad}); !errors.Is(err, ErrContentRejected) {
		t.Fatalf("bad bio err = %v", err)
	}
	if s := env.reload(t, u.ID).Strikes; s != 1 {
		t.Fatalf("strikes = %d", s)
	}
}

func TestLeaderboardOrdersByPoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	low, _ := env.newUser(t, models.RoleStudent, false)
	high, _ := env.newUser(t, models.RoleStudent, false)
	banned, _ := env.newUser(t, models.RoleStudent, false)
	_ = env.store.AddPoints(ctx, low.ID, 5)
	_ = env.store.AddPoints(ctx, high.ID, 30)
	_ = env.store.AddPoints(ctx, banned.ID, 100)
	_ = env.store.SetStatus(ctx, banned.ID, models.StatusBanned, false)

	board, err := env.users.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(board) != 2 || board[0].ID != high.ID || board[1].ID != low.ID {
		t.Fatalf("leaderboard = %+v", board)
	}
	_, _, err = env.users.List(ctx, Principal{ID: low.ID, Role: models.RoleStudent}, store.UserFilter{})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("student list err = %v", err)
	}
}
