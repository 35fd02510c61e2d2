package services

import (
	"context"
	"errors"
	"testing"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

func TestQuestionAnswerWalkthrough(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, student := env.newUser(t, models.RoleStudent, false)
	teacher, tp := env.newUser(t, models.RoleTeacher, true)

	q, err := env.questions.Create(ctx, student, QuestionInput{
		Title: "Help", Body: "stuck", Subject: "Biology", EducationLevel: "O-Level",
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	if q.Status != models.QuestionOpen || q.Views != 0 {
		t.Fatalf("new question status=%s views=%d", q.Status, q.Views)
	}

	got, err := env.questions.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Views != 1 {
		t.Fatalf("views after first read = %d, want 1", got.Views)
	}

	a, err := env.answers.Create(ctx, tp, q.ID, AnswerInput{Body: "try X"})
	if err != nil {
		t.Fatalf("create answer: %v", err)
	}
	if a.Status != models.AnswerApproved || a.VerifiedBy != teacher.ID || a.VerifiedAt == nil {
		t.Fatalf("verified teacher answer = %+v", a)
	}

	got, err = env.questions.Get(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.QuestionAnswered {
		t.Fatalf("status = %s, want answered", got.Status)
	}
	if len(got.AnswerIDs) != 1 || got.AnswerIDs[0] != a.ID {
		t.Fatalf("answer ids = %v", got.AnswerIDs)
	}
	if pts := env.reload(t, teacher.ID).Points; pts != PointsAnswer {
		t.Fatalf("teacher points = %d, want %d", pts, PointsAnswer)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	env := newTestEnv(t)
	_, p := env.newUser(t, models.RoleStudent, false)
	_, err := env.questions.Create(context.Background(), p, QuestionInput{
		Title: "   ", Body: "body", Subject: "Math", EducationLevel: "Kindergarten",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if _, ok := verr.Fields["educationLevel"]; !ok {
		t.Fatalf("fields = %v, want educationLevel", verr.Fields)
	}
}

func TestBlockedQuestionIsNotStoredAndCostsStrike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, p := env.newUser(t, models.RoleStudent, false)

	_, err := env.questions.Create(ctx, p, QuestionInput{
		Title: "Exam leak", Body: "who has the leaked exam", Subject: "Math", EducationLevel: "A-Level",
	})
	if !errors.Is(err, ErrContentRejected) {
		t.Fatalf("err = %v, want ErrContentRejected", err)
	}
	_, total, err := env.store.ListQuestions(ctx, store.QuestionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("stored %d questions, want 0", total)
	}
	if s := env.reload(t, u.ID).Strikes; s != 1 {
		t.Fatalf("strikes = %d, want 1", s)
	}
}

func TestThirdBlockSuspends(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, p := env.newUser(t, models.RoleStudent, false)
	bad := QuestionInput{Title: "hey", Body: "buy answers here", Subject: "Math", EducationLevel: "Primary"}

	for i := 0; i < models.MaxStrikes; i++ {
		if _, err := env.questions.Create(ctx, p, bad); !errors.Is(err, ErrContentRejected) {
			t.Fatalf("attempt %d: err = %v", i+1, err)
		}
	}
	after := env.reload(t, u.ID)
	if after.Strikes != models.MaxStrikes || after.Status != models.StatusSuspended {
		t.Fatalf("user = strikes %d status %s", after.Strikes, after.Status)
	}
	good := QuestionInput{Title: "Fractions", Body: "How do I add 1/2 and 1/3?", Subject: "Math", EducationLevel: "Primary"}
	if _, err := env.questions.Create(ctx, p, good); !errors.Is(err, ErrAccountSuspended) {
		t.Fatalf("err = %v, want ErrAccountSuspended", err)
	}
}

func TestFlaggedQuestionIsStored(t *testing.T) {
	env := newTestEnv(t)
	_, p := env.newUser(t, models.RoleStudent, false)
	q, err := env.questions.Create(context.Background(), p, QuestionInput{
		Title: "Tutor needed", Body: "Contact me at a@b.com", Subject: "Physics", EducationLevel: "University",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !q.Flagged || q.FlagReason == "" {
		t.Fatalf("flagged=%v reason=%q", q.Flagged, q.FlagReason)
	}
}

func TestQuestionBodyIsSanitized(t *testing.T) {
	env := newTestEnv(t)
	_, p := env.newUser(t, models.RoleStudent, false)
	q, err := env.questions.Create(context.Background(), p, QuestionInput{
		Title: "<b>Cells</b>", Body: `<p>What is a cell?</p><script>alert(1)</script>`, Subject: "Biology", EducationLevel: "O-Level",
	})
	if err != nil {
		t.Fatal(err)
	}
	if q.Title != "Cells" {
		t.Fatalf("title = %q", q.Title)
	}
	if q.Body != "<p>What is a cell?</p>" {
		t.Fatalf("body = %q", q.Body)
	}
}

func TestToggleUpvote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, author := env.newUser(t, models.RoleStudent, false)
	_, voter := env.newUser(t, models.RoleStudent, false)
	q := env.postQuestion(t, author)

	got, err := env.questions.ToggleUpvote(ctx, voter, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Upvotes) != 1 || got.Upvotes[0] != voter.ID {
		t.Fatalf("upvotes = %v", got.Upvotes)
	}
	got, err = env.questions.ToggleUpvote(ctx, voter, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Upvotes) != 0 {
		t.Fatalf("upvotes after toggle = %v", got.Upvotes)
	}
	// Authors may upvote their own questions.
	if got, err = env.questions.ToggleUpvote(ctx, author, q.ID); err != nil || len(got.Upvotes) != 1 {
		t.Fatalf("self upvote: %v %v", got, err)
	}
}

func TestCloseAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, author := env.newUser(t, models.RoleStudent, false)
	_, other := env.newUser(t, models.RoleStudent, false)
	_, admin := env.newUser(t, models.RoleAdmin, false)
	q := env.postQuestion(t, author)

	if _, err := env.questions.Close(ctx, other, q.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger close err = %v", err)
	}
	in := QuestionInput{Title: "Edited", Body: "edited", Subject: "Biology", EducationLevel: "O-Level"}
	if _, err := env.questions.Update(ctx, admin, q.ID, in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("admin edit err = %v", err)
	}
	if _, err := env.questions.Update(ctx, author, q.ID, in); err != nil {
		t.Fatalf("author edit: %v", err)
	}
	closed, err := env.questions.Close(ctx, admin, q.ID)
	if err != nil || closed.Status != models.QuestionClosed {
		t.Fatalf("admin close: %v %v", closed, err)
	}

	// Answering a closed question leaves it closed.
	_, answerer := env.newUser(t, models.RoleStudent, false)
	env.postAnswer(t, answerer, q.ID)
	got, err := env.store.GetQuestion(ctx, q.ID)
	if err != nil || got.Status != models.QuestionClosed {
		t.Fatalf("status after answer = %v %v", got, err)
	}
}

func TestDeleteQuestionCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, author := env.newUser(t, models.RoleStudent, false)
	_, other := env.newUser(t, models.RoleStudent, false)
	q := env.postQuestion(t, author)
	a := env.postAnswer(t, other, q.ID)

	if err := env.questions.Delete(ctx, other, q.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete err = %v", err)
	}
	if err := env.questions.Delete(ctx, author, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.questions.Get(ctx, q.ID); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("get deleted question err = %v", err)
	}
	if _, err := env.answers.Get(ctx, a.ID); !errors.Is(err, ErrAnswerNotFound) {
		t.Fatalf("get cascaded answer err = %v", err)
	}
}

func TestListQuestionsAttachesAuthors(t *testing.T) {
	env := newTestEnv(t)
	u, p := env.newUser(t, models.RoleStudent, false)
	env.postQuestion(t, p)
	items, total, err := env.questions.List(context.Background(), store.QuestionFilter{Subject: "Biology", Page: store.Page{Page: 1, PageSize: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(items) != 1 || items[0].Author == nil || items[0].Author.ID != u.ID {
		t.Fatalf("list = %d %+v", total, items)
	}
}
