package service

import (
	"context"
	"time"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/events"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
)

// RecordPayment records a repayment against a schedule entry. The amount
// must match the entry's EMI amount exactly. A concurrent payment against
// the same entry loses the settlement race and observes "already paid".
// Settling the final installment closes the loan and publishes its closure.
func (s *Service) RecordPayment(ctx context.Context, loanID, entryID string, amount float64, method, transactionID string) (*models.Payment, error) {
	loan, err := s.store.GetLoan(loanID)
	if err != nil {
		return nil, err
	}
	entry, err := s.store.GetScheduleEntry(entryID)
	if err != nil {
		return nil, err
	}
	if entry.LoanID != loanID {
		return nil, errs.InvalidArgument("EMI does not belong to this loan")
	}
	if entry.Status == models.EntryPaid {
		return nil, errs.InvalidArgument("EMI already paid")
	}
	if amount != entry.EMIAmount {
		return nil, errs.InvalidArgument("payment amount (%.2f) does not match EMI amount (%.2f)", amount, entry.EMIAmount)
	}

	payment := &models.Payment{
		ID:              uuid.NewString(),
		LoanID:          loanID,
		ScheduleEntryID: entryID,
		Amount:          amount,
		Method:          method,
		TransactionID:   transactionID,
		Status:          models.PaymentCompleted,
		CreatedAt:       time.Now(),
	}

	loanAfter, err := s.store.SettleEntry(payment, entry.PrincipalComponent)
	if err != nil {
		return nil, err
	}

	s.log.Infof("Payment %s recorded for loan %s month %d, balance %.2f", payment.ID, loanID, entry.Month, loanAfter.OutstandingBalance)

	if loanAfter.Status == models.LoanClosed && loan.Status != models.LoanClosed {
		s.publish(events.TopicLoanClosed, events.Event{
			LoanID: loanID,
			UserID: loanAfter.UserID,
			Amount: 0,
		})
		s.notifyUser(loanAfter.UserID, func(to, username string) error {
			return s.notifier.SendLoanClosedNotification(to, username, loanID)
		})
	}

	return payment, nil
}

// GetPayment retrieves a payment by id
func (s *Service) GetPayment(id string) (*models.Payment, error) {
	return s.store.GetPayment(id)
}

// GetPaymentsByLoan retrieves all payments of a loan
func (s *Service) GetPaymentsByLoan(loanID string) ([]models.Payment, error) {
	return s.store.GetPaymentsByLoan(loanID)
}

// GetPaymentsByEntry retrieves payments recorded against a schedule entry
func (s *Service) GetPaymentsByEntry(entryID string) ([]models.Payment, error) {
	return s.store.GetPaymentsByEntry(entryID)
}

// GetOutstandingBalance returns the highest outstanding balance among the
// remaining unpaid entries, which is the balance as of the last settled
// installment. A fully paid schedule yields zero.
func (s *Service) GetOutstandingBalance(loanID string) (float64, error) {
	if _, err := s.store.GetLoan(loanID); err != nil {
		return 0, err
	}
	entries, err := s.store.GetSchedule(loanID)
	if err != nil {
		return 0, err
	}
	balance := 0.0
	for _, e := range entries {
		if e.Status == models.EntryScheduled && e.OutstandingBalanceAfter > balance {
			balance = e.OutstandingBalanceAfter
		}
	}
	return balance, nil
}

// GetCompletedPaymentsCount counts completed payments of a loan
func (s *Service) GetCompletedPaymentsCount(loanID string) (int64, error) {
	return s.store.CountCompletedPayments(loanID)
}
