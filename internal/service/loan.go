package service

import (
	"context"
	"strings"
	"time"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
)

// CreateLoanFromApplication converts an approved application into an active
// loan, generates its EMI schedule and notifies the customer. The schedule
// generation and the notification are best effort.
func (s *Service) CreateLoanFromApplication(ctx context.Context, app *models.LoanApplication) (*models.Loan, error) {
	now := time.Now()
	loan := &models.Loan{
		ID:                 uuid.NewString(),
		UserID:             app.UserID,
		LoanType:           app.LoanType,
		Amount:             app.Amount,
		TermMonths:         app.TermMonths,
		RatePercent:        app.RatePercent,
		Status:             models.LoanActive,
		OutstandingBalance: app.Amount,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.CreateLoan(loan); err != nil {
		return nil, err
	}
	s.log.Infof("Loan %s created from application %s for user %s", loan.ID, app.ID, app.UserID)

	entries, err := s.GenerateSchedule(ctx, loan.ID)
	if err != nil {
		s.log.Errorf("EMI schedule generation failed for loan %s: %v", loan.ID, err)
		return loan, nil
	}

	if len(entries) > 0 {
		emi := entries[0].EMIAmount
		s.notifyUser(loan.UserID, func(to, username string) error {
			return s.notifier.SendEMIScheduleNotification(to, username, loan.ID, loan.TermMonths, emi)
		})
	}
	return loan, nil
}

// CreateLoan creates a loan directly, bypassing the application flow. The
// loan starts PENDING and becomes ACTIVE once its schedule is generated.
func (s *Service) CreateLoan(ctx context.Context, userID, loanType string, amount float64, termMonths int, customRate *float64) (*models.Loan, error) {
	loanType = strings.ToUpper(loanType)
	if !models.ValidLoanType(loanType) {
		return nil, errs.InvalidArgument("unknown loan type: %s", loanType)
	}
	if amount <= 0 {
		return nil, errs.InvalidArgument("amount must be positive")
	}
	if termMonths <= 0 {
		return nil, errs.InvalidArgument("term months must be positive")
	}

	rate := s.rates.GetRate(loanType)
	if customRate != nil {
		rate = *customRate
	}

	now := time.Now()
	loan := &models.Loan{
		ID:                 uuid.NewString(),
		UserID:             userID,
		LoanType:           loanType,
		Amount:             amount,
		TermMonths:         termMonths,
		RatePercent:        rate,
		Status:             models.LoanPending,
		OutstandingBalance: amount,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.CreateLoan(loan); err != nil {
		return nil, err
	}
	s.log.Infof("Loan %s created for user %s: %s %.2f over %d months at %.2f%%", loan.ID, userID, loanType, amount, termMonths, rate)
	return loan, nil
}

// GetLoan retrieves a loan by id
func (s *Service) GetLoan(id string) (*models.Loan, error) {
	return s.store.GetLoan(id)
}

// ListLoans retrieves all loans
func (s *Service) ListLoans() ([]models.Loan, error) {
	return s.store.ListLoans()
}

// ListLoansByUser retrieves all loans of a user
func (s *Service) ListLoansByUser(userID string) ([]models.Loan, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errs.InvalidArgument("userId is required")
	}
	return s.store.ListLoansByUser(userID)
}
