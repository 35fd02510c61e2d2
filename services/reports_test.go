package services

import (
	"context"
	"errors"
	"testing"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/store"
)

func ptr[T any](v T) *T { return &v }

func TestReportDerivesReportedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author, ap := env.newUser(t, models.RoleStudent, false)
	_, reporter := env.newUser(t, models.RoleStudent, false)
	q := env.postQuestion(t, ap)

	r, err := env.reports.Create(ctx, reporter, ReportInput{
		ContentType: "question", ContentID: q.ID, Type: models.ReportSpam, Description: "advertising",
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.ReportedUserID != author.ID || r.Status != models.ReportPending || r.Priority != models.PriorityMedium {
		t.Fatalf("report = %+v", r)
	}
}

func TestReportRejectsUnknownContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, reporter := env.newUser(t, models.RoleStudent, false)

	_, err := env.reports.Create(ctx, reporter, ReportInput{ContentType: "poll", ContentID: "x", Type: models.ReportOther, Description: "?"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown type err = %v", err)
	}
	_, err = env.reports.Create(ctx, reporter, ReportInput{ContentType: "answer", ContentID: "missing", Type: models.ReportOther, Description: "?"})
	if !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("missing content err = %v", err)
	}
}

func TestReportUpdateSuspendsUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author, ap := env.newUser(t, models.RoleStudent, false)
	_, reporter := env.newUser(t, models.RoleStudent, false)
	admin, adm := env.newUser(t, models.RoleAdmin, false)
	a := env.postAnswer(t, ap, env.postQuestion(t, reporter).ID)

	r, err := env.reports.Create(ctx, reporter, ReportInput{ContentType: "answer", ContentID: a.ID, Type: models.ReportHarassment, Description: "rude"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.reports.Update(ctx, reporter, r.ID, ReportUpdate{Status: ptr(models.ReportResolved)}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin update err = %v", err)
	}

	got, err := env.reports.Update(ctx, adm, r.ID, ReportUpdate{
		Status: ptr(models.ReportResolved),
		Action: ptr(models.ActionUserSuspended),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ReviewedBy != admin.ID || got.ReviewedAt == nil {
		t.Fatalf("review stamp = %q %v", got.ReviewedBy, got.ReviewedAt)
	}
	u := env.reload(t, author.ID)
	if u.Strikes != 1 || u.Status != models.StatusSuspended {
		t.Fatalf("user strikes=%d status=%s", u.Strikes, u.Status)
	}

	// Resolved is terminal.
	if _, err := env.reports.Update(ctx, adm, r.ID, ReportUpdate{Status: ptr(models.ReportReviewing)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("reopen err = %v", err)
	}
	// Repeating the action on a user who is still suspended adds no strike.
	if _, err := env.reports.Update(ctx, adm, r.ID, ReportUpdate{Action: ptr(models.ActionUserSuspended), ReviewNotes: ptr("confirmed")}); err != nil {
		t.Fatal(err)
	}
	if s := env.reload(t, author.ID).Strikes; s != 1 {
		t.Fatalf("strikes after repeat = %d", s)
	}

	// Once reinstated, the same report suspends again.
	if err := env.store.SetStatus(ctx, author.ID, models.StatusActive, true); err != nil {
		t.Fatal(err)
	}
	if _, err := env.reports.Update(ctx, adm, r.ID, ReportUpdate{Action: ptr(models.ActionUserSuspended)}); err != nil {
		t.Fatal(err)
	}
	u = env.reload(t, author.ID)
	if u.Strikes != 1 || u.Status != models.StatusSuspended {
		t.Fatalf("after reinstatement: strikes=%d status=%s", u.Strikes, u.Status)
	}
}

func TestReportSuspendKeepsBan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	target, _ := env.newUser(t, models.RoleStudent, false)
	_, reporter := env.newUser(t, models.RoleStudent, false)
	_, adm := env.newUser(t, models.RoleAdmin, false)

	r, err := env.reports.Create(ctx, reporter, ReportInput{ContentType: "user", ContentID: target.ID, Type: models.ReportHarassment, Description: "threats"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.reports.Update(ctx, adm, r.ID, ReportUpdate{Action: ptr(models.ActionUserBanned)}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.reports.Update(ctx, adm, r.ID, ReportUpdate{Action: ptr(models.ActionUserSuspended)}); err != nil {
		t.Fatal(err)
	}
	u := env.reload(t, target.ID)
	if u.Status != models.StatusBanned || u.Strikes != 0 {
		t.Fatalf("user status=%s strikes=%d", u.Status, u.Strikes)
	}
}

func TestReportUpdateBansWithoutStrike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	target, _ := env.newUser(t, models.RoleStudent, false)
	_, reporter := env.newUser(t, models.RoleStudent, false)
	_, adm := env.newUser(t, models.RoleAdmin, false)

	r, err := env.reports.Create(ctx, reporter, ReportInput{ContentType: "user", ContentID: target.ID, Type: models.ReportCheating, Description: "sells answers"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.reports.Update(ctx, adm, r.ID, ReportUpdate{Status: ptr(models.ReportReviewing)}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.reports.Update(ctx, adm, r.ID, ReportUpdate{Status: ptr(models.ReportResolved), Action: ptr(models.ActionUserBanned)}); err != nil {
		t.Fatal(err)
	}
	u := env.reload(t, target.ID)
	if u.Status != models.StatusBanned || u.Strikes != 0 {
		t.Fatalf("user status=%s strikes=%d", u.Status, u.Strikes)
	}
}

func TestReportContentRemoved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, ap := env.newUser(t, models.RoleStudent, false)
	_, reporter := env.newUser(t, models.RoleStudent, false)
	_, adm := env.newUser(t, models.RoleAdmin, false)
	q := env.postQuestion(t, ap)

	r, err := env.reports.Create(ctx, reporter, ReportInput{ContentType: "question", ContentID: q.ID, Type: models.ReportInappropriate, Description: "off topic"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.reports.Update(ctx, adm, r.ID, ReportUpdate{Status: ptr(models.ReportResolved), Action: ptr(models.ActionContentRemoved)}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.store.GetQuestion(ctx, q.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("question still present: %v", err)
	}
	// Content already gone is not an error on a repeated review.
	if _, err := env.reports.Update(ctx, adm, r.ID, ReportUpdate{Action: ptr(models.ActionContentRemoved)}); err != nil {
		t.Fatalf("repeat removal: %v", err)
	}
}

func TestReportSanctionSkipsMissingUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	target, _ := env.newUser(t, models.RoleStudent, false)
	_, reporter := env.newUser(t, models.RoleStudent, false)
	_, adm := env.newUser(t, models.RoleAdmin, false)

	r, err := env.reports.Create(ctx, reporter, ReportInput{
		ContentType: "user", ContentID: target.ID, ReportedUserID: "no-such-user", Type: models.ReportSpam, Description: "spam",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.reports.Update(ctx, adm, r.ID, ReportUpdate{Action: ptr(models.ActionUserSuspended)}); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestReportVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	target, _ := env.newUser(t, models.RoleStudent, false)
	_, reporter := env.newUser(t, models.RoleStudent, false)
	_, stranger := env.newUser(t, models.RoleStudent, false)
	_, adm := env.newUser(t, models.RoleAdmin, false)

	r, err := env.reports.Create(ctx, reporter, ReportInput{ContentType: "user", ContentID: target.ID, Type: models.ReportOther, Description: "odd", Priority: models.PriorityHigh})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.reports.Get(ctx, reporter, r.ID); err != nil {
		t.Fatalf("reporter get: %v", err)
	}
	if _, err := env.reports.Get(ctx, stranger, r.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger get err = %v", err)
	}
	if _, _, err := env.reports.List(ctx, stranger, store.ReportFilter{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger list err = %v", err)
	}
	items, total, err := env.reports.List(ctx, adm, store.ReportFilter{Priority: models.PriorityHigh})
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("admin list = %d %v", total, err)
	}
	mine, _, err := env.reports.ListMine(ctx, reporter, store.Page{Page: 1, PageSize: 20})
	if err != nil || len(mine) != 1 {
		t.Fatalf("mine = %v %v", mine, err)
	}
}
