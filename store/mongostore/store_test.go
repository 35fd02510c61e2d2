package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edulink-ug/edulink/models"
)

// newTestStore connects to EDULINK_TEST_MONGO_URI and uses a throwaway database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("EDULINK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("EDULINK_TEST_MONGO_URI not set; skipping MongoDB integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := client.Database("edulink_test_" + uuid.NewString()[:8])
	s, err := New(ctx, client, db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return s
}

func TestMongoAcceptAnswerIsExclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	q := &models.Question{ID: uuid.NewString(), AuthorID: "u1", Title: "t", Body: "b", Subject: "Physics", EducationLevel: "A-Level", Status: models.QuestionOpen}
	if err := s.CreateQuestion(ctx, q); err != nil {
		t.Fatal(err)
	}
	var ids []string
	for i := 0; i < 3; i++ {
		a := &models.Answer{ID: uuid.NewString(), QuestionID: q.ID, AuthorID: "u2", Body: "a", Status: models.AnswerPending}
		if err := s.CreateAnswer(ctx, a); err != nil {
			t.Fatal(err)
		}
		if err := s.AttachAnswer(ctx, q.ID, a.ID); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, a.ID)
	}
	for i, step := range []struct {
		id    string
		first bool
	}{{ids[0], true}, {ids[2], true}, {ids[0], false}, {ids[2], false}} {
		first, err := s.AcceptAnswer(ctx, q.ID, step.id, time.Now().UTC())
		if err != nil {
			t.Fatal(err)
		}
		if first != step.first {
			t.Fatalf("step %d: first = %v, want %v", i, first, step.first)
		}
	}

	list, err := s.ListAnswers(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range list {
		if a.IsAccepted != (a.ID == ids[2]) {
			t.Fatalf("answer %s accepted=%v", a.ID, a.IsAccepted)
		}
	}
	got, _ := s.GetQuestion(ctx, q.ID)
	if got.Status != models.QuestionAnswered || len(got.AnswerIDs) != 3 {
		t.Fatalf("unexpected question state %s %v", got.Status, got.AnswerIDs)
	}
}

func TestMongoVotesAndStrikes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := &models.User{ID: uuid.NewString(), Name: "n", Email: uuid.NewString() + "@x.ug", Role: models.RoleStudent, Status: models.StatusActive}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if _, err := s.AddStrike(ctx, u.ID); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := s.GetUser(ctx, u.ID)
	if got.Strikes != models.MaxStrikes {
		t.Fatalf("expected capped strikes, got %d", got.Strikes)
	}

	a := &models.Answer{ID: uuid.NewString(), QuestionID: "q", AuthorID: "x", Body: "b", Status: models.AnswerPending}
	_ = s.CreateAnswer(ctx, a)
	_ = s.SetAnswerVote(ctx, a.ID, u.ID, models.VoteUp)
	_ = s.SetAnswerVote(ctx, a.ID, u.ID, models.VoteDown)
	ans, _ := s.GetAnswer(ctx, a.ID)
	if len(ans.Upvotes) != 0 || len(ans.Downvotes) != 1 {
		t.Fatalf("votes not disjoint: %+v", ans)
	}
}
