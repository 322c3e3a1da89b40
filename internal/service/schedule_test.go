package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/models"
)

func seedLoan(t *testing.T, env *testEnv, amount, rate float64, term int) *models.Loan {
	t.Helper()
	loan, err := env.svc.CreateLoan(context.Background(), "1", "PERSONAL", amount, term, floatPtr(rate))
	if err != nil {
		t.Fatalf("failed to seed loan: %v", err)
	}
	return loan
}

func TestGenerateSchedule(t *testing.T) {
	env := newTestEnv()
	loan := seedLoan(t, env, 100000, 12, 12)

	entries, err := env.svc.GenerateSchedule(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 12 {
		t.Fatalf("expected 12 entries, got %d", len(entries))
	}

	// Every installment carries the same EMI.
	for _, e := range entries {
		if math.Abs(e.EMIAmount-8884.88) > 0.01 {
			t.Errorf("month %d: expected EMI near 8884.88, got %.4f", e.Month, e.EMIAmount)
		}
		if e.Status != models.EntryScheduled {
			t.Errorf("month %d: expected SCHEDULED, got %s", e.Month, e.Status)
		}
	}

	// Principal components sum back to the loan amount within rounding drift.
	principalSum := 0.0
	for _, e := range entries {
		principalSum += e.PrincipalComponent
	}
	if math.Abs(principalSum-100000) > float64(len(entries))*0.01 {
		t.Errorf("principal sum %.4f deviates from principal", principalSum)
	}

	// Interest declines and the running balance never increases.
	for i := 1; i < len(entries); i++ {
		if entries[i].InterestComponent > entries[i-1].InterestComponent {
			t.Errorf("interest increased at month %d", entries[i].Month)
		}
		if entries[i].OutstandingBalanceAfter > entries[i-1].OutstandingBalanceAfter {
			t.Errorf("balance increased at month %d", entries[i].Month)
		}
	}
	final := entries[len(entries)-1].OutstandingBalanceAfter
	if final > models.ClosureEpsilon {
		t.Errorf("final balance %.4f above closure epsilon", final)
	}

	// Generating the schedule activates a pending loan.
	got, err := env.svc.GetLoan(loan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != models.LoanActive {
		t.Errorf("expected ACTIVE after schedule generation, got %s", got.Status)
	}
}

func TestGenerateScheduleDueDates(t *testing.T) {
	env := newTestEnv()
	loan := seedLoan(t, env, 100000, 12, 12)

	entries, err := env.svc.GenerateSchedule(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, e := range entries {
		// Each due date is the last day of its month.
		next := e.DueDate.AddDate(0, 0, 1)
		if next.Day() != 1 {
			t.Errorf("month %d: due date %v is not an end of month", e.Month, e.DueDate)
		}
		if i > 0 && !e.DueDate.After(entries[i-1].DueDate) {
			t.Errorf("month %d: due dates not strictly increasing", e.Month)
		}
	}

	first := entries[0].DueDate
	if first.Before(time.Now().AddDate(0, 0, -1)) {
		t.Errorf("first due date %v lies in the past", first)
	}
}

func TestGenerateScheduleIdempotent(t *testing.T) {
	env := newTestEnv()
	loan := seedLoan(t, env, 100000, 12, 12)

	first, err := env.svc.GenerateSchedule(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := env.svc.GenerateSchedule(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := env.svc.GetSchedule(loan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 12 {
		t.Fatalf("regeneration must replace, not append: got %d entries", len(stored))
	}
	// The old entries are gone.
	if _, err := env.svc.GetScheduleEntry(first[0].ID); errs.KindOf(err) != errs.KindNotFound {
		t.Errorf("expected old entry to be replaced, got %v", err)
	}
	if _, err := env.svc.GetScheduleEntry(second[0].ID); err != nil {
		t.Errorf("expected new entry to exist, got %v", err)
	}
}

func TestGenerateScheduleRequiresRate(t *testing.T) {
	env := newTestEnv()
	loan := &models.Loan{
		ID:                 "loan-no-rate",
		UserID:             "1",
		LoanType:           models.LoanTypePersonal,
		Amount:             100000,
		TermMonths:         12,
		RatePercent:        0,
		Status:             models.LoanPending,
		OutstandingBalance: 100000,
	}
	if err := env.store.CreateLoan(loan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := env.svc.GenerateSchedule(context.Background(), loan.ID)
	if err == nil {
		t.Fatal("expected error for zero rate")
	}
	if errs.KindOf(err) != errs.KindInvalidArgument {
		t.Errorf("expected invalid argument, got %v", err)
	}
}

func TestGenerateScheduleUnknownLoan(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.GenerateSchedule(context.Background(), "missing")
	if errs.KindOf(err) != errs.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}
