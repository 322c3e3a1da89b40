package service

import (
	"context"
	"math"
	"time"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
)

// GenerateSchedule builds the amortization schedule for a loan, replacing
// any existing schedule. Regeneration is idempotent: re-running always
// replaces, never appends. A PENDING loan becomes ACTIVE once its schedule
// exists.
func (s *Service) GenerateSchedule(ctx context.Context, loanID string) ([]models.ScheduleEntry, error) {
	loan, err := s.store.GetLoan(loanID)
	if err != nil {
		return nil, err
	}
	if loan.RatePercent == 0 {
		return nil, errs.InvalidArgument("loan must have a valid interest rate")
	}

	emi, err := CalculateEMI(loan.Amount, loan.RatePercent, loan.TermMonths)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthlyRate := loan.RatePercent / 12 / 100
	balance := loan.Amount
	entries := make([]models.ScheduleEntry, 0, loan.TermMonths)

	for month := 1; month <= loan.TermMonths; month++ {
		interest := balance * monthlyRate
		principal := emi - interest
		balance -= principal

		entries = append(entries, models.ScheduleEntry{
			ID:                      uuid.NewString(),
			LoanID:                  loanID,
			Month:                   month,
			EMIAmount:               round2(emi),
			PrincipalComponent:      round2(principal),
			InterestComponent:       round2(interest),
			OutstandingBalanceAfter: round2(math.Max(0, balance)),
			Status:                  models.EntryScheduled,
			DueDate:                 endOfMonth(now, month),
			CreatedAt:               now,
		})
	}

	if err := s.store.ReplaceSchedule(loanID, entries); err != nil {
		return nil, err
	}

	if loan.Status == models.LoanPending {
		loan.Status = models.LoanActive
		loan.UpdatedAt = now
		if err := s.store.UpdateLoan(loan); err != nil {
			return nil, err
		}
	}

	s.log.Infof("Generated %d-month EMI schedule for loan %s, EMI %.2f", loan.TermMonths, loanID, round2(emi))
	return entries, nil
}

// GetSchedule retrieves the ordered schedule of a loan
func (s *Service) GetSchedule(loanID string) ([]models.ScheduleEntry, error) {
	return s.store.GetSchedule(loanID)
}

// GetScheduleEntry retrieves a single schedule entry
func (s *Service) GetScheduleEntry(id string) (*models.ScheduleEntry, error) {
	return s.store.GetScheduleEntry(id)
}

// endOfMonth returns the last day of the month addMonths after t.
func endOfMonth(t time.Time, addMonths int) time.Time {
	// Day 0 of month+1 normalizes to the last day of the target month.
	return time.Date(t.Year(), t.Month()+time.Month(addMonths)+1, 0, 0, 0, 0, 0, t.Location())
}
