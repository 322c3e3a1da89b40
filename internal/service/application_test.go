package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/events"
	"github.com/Dan9191/loan-service/internal/models"
)

func TestApply(t *testing.T) {
	env := newTestEnv()
	env.profiles.profile = goodProfile()

	app, err := env.svc.Apply(context.Background(), "1", "personal", 100000, 12, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Status != models.ApplicationSubmitted {
		t.Errorf("expected SUBMITTED, got %s", app.Status)
	}
	if app.LoanType != models.LoanTypePersonal {
		t.Errorf("expected loan type normalized to PERSONAL, got %s", app.LoanType)
	}
	if app.RatePercent != 12 {
		t.Errorf("expected table rate 12, got %v", app.RatePercent)
	}
	if app.ID == "" {
		t.Error("expected a generated id")
	}
	if env.pub.count(events.TopicApplicationCreated) != 1 {
		t.Error("expected one application.created event")
	}
}

func TestApplyCustomRate(t *testing.T) {
	env := newTestEnv()
	env.profiles.profile = goodProfile()

	app, err := env.svc.Apply(context.Background(), "1", "PERSONAL", 100000, 12, floatPtr(9.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.RatePercent != 9.25 {
		t.Errorf("expected custom rate 9.25, got %v", app.RatePercent)
	}
}

func TestApplyValidation(t *testing.T) {
	env := newTestEnv()
	env.profiles.profile = goodProfile()

	cases := []struct {
		name     string
		loanType string
		amount   float64
		term     int
	}{
		{"unknown loan type", "YACHT", 100000, 12},
		{"amount below minimum", "PERSONAL", 4999, 12},
		{"amount above maximum", "PERSONAL", 2000001, 12},
		{"tenure not offered", "PERSONAL", 100000, 18},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Apply(context.Background(), "1", tc.loanType, tc.amount, tc.term, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if errs.KindOf(err) != errs.KindInvalidArgument {
				t.Errorf("expected invalid argument, got %v", err)
			}
		})
	}
}

func TestApplyRequiresProfile(t *testing.T) {
	env := newTestEnv()
	env.profiles.profile = nil

	_, err := env.svc.Apply(context.Background(), "1", "PERSONAL", 100000, 12, nil)
	if err == nil {
		t.Fatal("expected error when profile is missing")
	}
	if errs.KindOf(err) != errs.KindInvalidArgument {
		t.Errorf("expected invalid argument, got %v", err)
	}

	// An unreachable profile service does not block the application.
	env.profiles.err = errors.New("timeout")
	if _, err := env.svc.Apply(context.Background(), "1", "PERSONAL", 100000, 12, nil); err != nil {
		t.Fatalf("expected apply to proceed on profile outage, got %v", err)
	}
}

func TestApplyRejectsDuplicateActive(t *testing.T) {
	env := newTestEnv()
	env.profiles.profile = goodProfile()

	if _, err := env.svc.Apply(context.Background(), "1", "PERSONAL", 100000, 12, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := env.svc.Apply(context.Background(), "1", "PERSONAL", 50000, 24, nil)
	if err == nil {
		t.Fatal("expected conflict for duplicate active application")
	}
	if errs.KindOf(err) != errs.KindConflict {
		t.Errorf("expected conflict, got %v", err)
	}

	// A different loan type is allowed.
	if _, err := env.svc.Apply(context.Background(), "1", "AUTO", 50000, 24, nil); err != nil {
		t.Fatalf("unexpected error for different type: %v", err)
	}
	// And so is another user.
	if _, err := env.svc.Apply(context.Background(), "2", "PERSONAL", 50000, 24, nil); err != nil {
		t.Fatalf("unexpected error for different user: %v", err)
	}
}

func TestMarkUnderReview(t *testing.T) {
	env := newTestEnv()
	env.profiles.profile = goodProfile()

	app, err := env.svc.Apply(context.Background(), "1", "PERSONAL", 100000, 12, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reviewed, err := env.svc.MarkUnderReview(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reviewed.Status != models.ApplicationUnderReview {
		t.Errorf("expected UNDER_REVIEW, got %s", reviewed.Status)
	}
	if env.pub.count(events.TopicApplicationUnderReview) != 1 {
		t.Error("expected one application.under_review event")
	}

	// Moving to review twice is invalid.
	if _, err := env.svc.MarkUnderReview(context.Background(), app.ID); err == nil {
		t.Fatal("expected error for repeated review transition")
	}
}

func TestApprove(t *testing.T) {
	env := newTestEnv()
	env.profiles.profile = goodProfile()

	app, err := env.svc.Apply(context.Background(), "1", "PERSONAL", 100000, 12, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.svc.MarkUnderReview(context.Background(), app.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	approved, err := env.svc.Approve(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if approved.Status != models.ApplicationApproved {
		t.Errorf("expected APPROVED, got %s", approved.Status)
	}
	if approved.Remarks == "" {
		t.Error("expected evaluator reason in remarks")
	}
	if env.pub.count(events.TopicApplicationApproved) != 1 {
		t.Error("expected one application.approved event")
	}

	// Approval spawns an active loan with a full schedule.
	loans, err := env.svc.ListLoansByUser("1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loans) != 1 {
		t.Fatalf("expected one loan, got %d", len(loans))
	}
	if loans[0].Status != models.LoanActive {
		t.Errorf("expected ACTIVE loan, got %s", loans[0].Status)
	}
	entries, err := env.svc.GetSchedule(loans[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 12 {
		t.Errorf("expected 12 schedule entries, got %d", len(entries))
	}
}

func TestApproveFromSubmitted(t *testing.T) {
	env := newTestEnv()
	env.profiles.profile = goodProfile()

	app, err := env.svc.Apply(context.Background(), "1", "PERSONAL", 100000, 12, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// SUBMITTED can be approved without an explicit review step.
	if _, err := env.svc.Approve(context.Background(), app.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApproveFailedCriteriaKeepsStatus(t *testing.T) {
	env := newTestEnv()
	env.profiles.profile = goodProfile()

	app, err := env.svc.Apply(context.Background(), "1", "PERSONAL", 100000, 12, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.svc.MarkUnderReview(context.Background(), app.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.profiles.profile.CreditScore = floatPtr(500)
	_, err = env.svc.Approve(context.Background(), app.ID)
	if err == nil {
		t.Fatal("expected error when criteria fail")
	}
	if errs.KindOf(err) != errs.KindInvalidArgument {
		t.Errorf("expected invalid argument, got %v", err)
	}
	if !strings.Contains(err.Error(), "cannot be approved") {
		t.Errorf("unexpected message: %v", err)
	}

	// The application stays put pending an explicit rejection.
	current, err := env.svc.GetApplication(app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Status != models.ApplicationUnderReview {
		t.Errorf("expected UNDER_REVIEW preserved, got %s", current.Status)
	}
	if env.pub.count(events.TopicApplicationApproved) != 0 {
		t.Error("no approval event should fire")
	}
}

func TestReject(t *testing.T) {
	env := newTestEnv()
	env.profiles.profile = goodProfile()

	app, err := env.svc.Apply(context.Background(), "1", "PERSONAL", 100000, 12, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := env.svc.Reject(context.Background(), app.ID, "   "); err == nil {
		t.Fatal("expected error for blank remarks")
	}

	rejected, err := env.svc.Reject(context.Background(), app.ID, "income documents missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rejected.Status != models.ApplicationRejected {
		t.Errorf("expected REJECTED, got %s", rejected.Status)
	}
	if rejected.Remarks != "income documents missing" {
		t.Errorf("unexpected remarks: %q", rejected.Remarks)
	}
	if env.pub.count(events.TopicApplicationRejected) != 1 {
		t.Error("expected one application.rejected event")
	}

	// Terminal states cannot transition again.
	if _, err := env.svc.Reject(context.Background(), app.ID, "again"); err == nil {
		t.Fatal("expected error rejecting a rejected application")
	}
	if _, err := env.svc.Approve(context.Background(), app.ID); err == nil {
		t.Fatal("expected error approving a rejected application")
	}
}
