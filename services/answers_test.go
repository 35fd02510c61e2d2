package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/utils"
)

func TestNextVote(t *testing.T) {
	cases := []struct {
		current, requested, want models.VoteKind
	}{
		{"", models.VoteUp, models.VoteUp},
		{models.VoteUp, models.VoteUp, ""},
		{models.VoteUp, models.VoteDown, models.VoteDown},
		{models.VoteDown, models.VoteDown, ""},
		{models.VoteDown, models.VoteUp, models.VoteUp},
	}
	for _, tc := range cases {
		if got := nextVote(tc.current, tc.requested); got != tc.want {
			t.Errorf("nextVote(%q, %q) = %q, want %q", tc.current, tc.requested, got, tc.want)
		}
	}
}

func TestVoteSetsStayDisjoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, author := env.newUser(t, models.RoleStudent, false)
	_, voter := env.newUser(t, models.RoleStudent, false)
	q := env.postQuestion(t, author)
	a := env.postAnswer(t, author, q.ID)

	got, err := env.answers.Vote(ctx, voter, a.ID, models.VoteUp)
	if err != nil {
		t.Fatal(err)
	}
	if got.Score() != 1 || got.VoteOf(voter.ID) != models.VoteUp {
		t.Fatalf("after upvote: up=%v down=%v", got.Upvotes, got.Downvotes)
	}
	got, err = env.answers.Vote(ctx, voter, a.ID, models.VoteDown)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Upvotes) != 0 || len(got.Downvotes) != 1 || got.Score() != -1 {
		t.Fatalf("after switch: up=%v down=%v", got.Upvotes, got.Downvotes)
	}
	got, err = env.answers.Vote(ctx, voter, a.ID, models.VoteDown)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Upvotes)+len(got.Downvotes) != 0 {
		t.Fatalf("after retract: up=%v down=%v", got.Upvotes, got.Downvotes)
	}
	if _, err := env.answers.Vote(ctx, voter, a.ID, models.VoteKind("sideways")); !errors.Is(err, ErrValidation) {
		t.Fatalf("invalid kind err = %v", err)
	}
}

func TestAcceptIsExclusiveAndAwardsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, asker := env.newUser(t, models.RoleStudent, false)
	helper, hp := env.newUser(t, models.RoleStudent, false)
	_, admin := env.newUser(t, models.RoleAdmin, false)
	q := env.postQuestion(t, asker)
	a1 := env.postAnswer(t, hp, q.ID)
	a2 := env.postAnswer(t, hp, q.ID)

	if _, err := env.answers.Accept(ctx, hp, a1.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("answerer accept err = %v", err)
	}
	if _, err := env.answers.Accept(ctx, admin, a1.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin accept err = %v", err)
	}
	if _, err := env.answers.Accept(ctx, asker, a1.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.answers.Accept(ctx, asker, a2.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.answers.Accept(ctx, asker, a2.ID); err != nil {
		t.Fatal(err)
	}

	list, err := env.answers.List(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	accepted := 0
	for _, a := range list {
		if a.IsAccepted {
			accepted++
		}
	}
	if accepted != 1 || list[0].ID != a2.ID {
		t.Fatalf("accepted=%d first=%s, want exactly a2 first", accepted, list[0].ID)
	}
	// Two answers (+5 each) and two distinct acceptances (+15 each).
	if pts := env.reload(t, helper.ID).Points; pts != 2*PointsAnswer+2*PointsAccepted {
		t.Fatalf("points = %d", pts)
	}
}

func TestAcceptFlipBackPaysOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, asker := env.newUser(t, models.RoleStudent, false)
	first, fp := env.newUser(t, models.RoleStudent, false)
	second, sp := env.newUser(t, models.RoleStudent, false)
	q := env.postQuestion(t, asker)
	a1 := env.postAnswer(t, fp, q.ID)
	a2 := env.postAnswer(t, sp, q.ID)

	for _, id := range []string{a1.ID, a2.ID, a1.ID, a2.ID, a1.ID} {
		if _, err := env.answers.Accept(ctx, asker, id); err != nil {
			t.Fatalf("accept %s: %v", id, err)
		}
	}

	got, err := env.answers.Get(ctx, a1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsAccepted {
		t.Fatal("a1 should hold the accepted mark")
	}
	want := PointsAnswer + PointsAccepted
	if pts := env.reload(t, first.ID).Points; pts != want {
		t.Fatalf("a1 author points = %d, want %d", pts, want)
	}
	if pts := env.reload(t, second.ID).Points; pts != want {
		t.Fatalf("a2 author points = %d, want %d", pts, want)
	}
}

func TestVerifyRequiresTeacherAndAwardsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, asker := env.newUser(t, models.RoleStudent, false)
	helper, hp := env.newUser(t, models.RoleStudent, false)
	teacher, tp := env.newUser(t, models.RoleTeacher, false)
	q := env.postQuestion(t, asker)
	a := env.postAnswer(t, hp, q.ID)
	if a.Status != models.AnswerPending {
		t.Fatalf("student answer status = %s", a.Status)
	}

	if _, err := env.answers.Verify(ctx, asker, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("student verify err = %v", err)
	}
	got, err := env.answers.Verify(ctx, tp, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.AnswerApproved || got.VerifiedBy != teacher.ID {
		t.Fatalf("verified answer = %+v", got)
	}
	if _, err := env.answers.Verify(ctx, tp, a.ID); err != nil {
		t.Fatal(err)
	}
	if pts := env.reload(t, helper.ID).Points; pts != PointsAnswer+PointsVerified {
		t.Fatalf("points = %d", pts)
	}
}

func TestUnverifiedTeacherAnswerIsPending(t *testing.T) {
	env := newTestEnv(t)
	_, asker := env.newUser(t, models.RoleStudent, false)
	_, tp := env.newUser(t, models.RoleTeacher, false)
	q := env.postQuestion(t, asker)
	if a := env.postAnswer(t, tp, q.ID); a.Status != models.AnswerPending || a.VerifiedBy != "" {
		t.Fatalf("answer = %+v", a)
	}
}

func TestRejectAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, asker := env.newUser(t, models.RoleStudent, false)
	_, tp := env.newUser(t, models.RoleTeacher, false)
	_, admin := env.newUser(t, models.RoleAdmin, false)
	q := env.postQuestion(t, asker)
	a := env.postAnswer(t, asker, q.ID)

	if _, err := env.answers.Reject(ctx, tp, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("teacher reject err = %v", err)
	}
	got, err := env.answers.Reject(ctx, admin, a.ID)
	if err != nil || got.Status != models.AnswerRejected {
		t.Fatalf("reject = %v %v", got, err)
	}
	if _, err := env.answers.Reject(ctx, admin, a.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("second reject err = %v", err)
	}
}

func TestAnswerMissingQuestion(t *testing.T) {
	env := newTestEnv(t)
	_, p := env.newUser(t, models.RoleStudent, false)
	_, err := env.answers.Create(context.Background(), p, "nope", AnswerInput{Body: "hello"})
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteAnswer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, asker := env.newUser(t, models.RoleStudent, false)
	_, hp := env.newUser(t, models.RoleStudent, false)
	q := env.postQuestion(t, asker)
	a := env.postAnswer(t, hp, q.ID)

	if err := env.answers.Delete(ctx, asker, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("question author delete err = %v", err)
	}
	if err := env.answers.Delete(ctx, hp, a.ID); err != nil {
		t.Fatal(err)
	}
	got, err := env.store.GetQuestion(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.AnswerIDs) != 0 {
		t.Fatalf("answer ids = %v", got.AnswerIDs)
	}
}

func TestSortAnswers(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []models.Answer{
		{ID: "old-low", CreatedAt: base},
		{ID: "new-high", CreatedAt: base.Add(2 * time.Hour), Upvotes: []string{"a", "b"}},
		{ID: "accepted", CreatedAt: base.Add(3 * time.Hour), IsAccepted: true, Downvotes: []string{"c"}},
		{ID: "old-high", CreatedAt: base.Add(time.Hour), Upvotes: []string{"d", "e"}},
	}
	SortAnswers(items)
	want := []string{"accepted", "old-high", "new-high", "old-low"}
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, items[i].ID, id)
		}
	}
}

func TestAwardDropsCachedLeaderboard(t *testing.T) {
	addr := os.Getenv("EDULINK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EDULINK_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	utils.SetRedis(rdb)
	t.Cleanup(func() { utils.SetRedis(nil) })

	env := newTestEnv(t)
	_, asker := env.newUser(t, models.RoleStudent, false)
	_, hp := env.newUser(t, models.RoleStudent, false)
	q := env.postQuestion(t, asker)

	key := utils.CacheLeaderboard + ":limit=" + uuid.NewString()
	utils.CacheSetJSON(key, []string{"stale"}, time.Minute)
	if _, ok := utils.CacheGetBytes(key); !ok {
		t.Fatal("leaderboard entry was not cached")
	}
	env.postAnswer(t, hp, q.ID)
	if _, ok := utils.CacheGetBytes(key); ok {
		t.Fatal("leaderboard entry survived a points award")
	}
}
