package repository

import (
	"database/sql"
	"fmt"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/models"
)

// SettleEntry applies a validated payment in one transaction: the schedule
// entry flips SCHEDULED -> PAID via a compare-and-swap, the payment record is
// inserted, and the loan balance is reduced by the principal component. When
// two callers race on the same entry exactly one wins; the other gets a
// Conflict. The loan closes when its balance falls to the closure epsilon.
// The updated loan is returned so the caller can observe the closure.
func (r *Repository) SettleEntry(payment *models.Payment, principal float64) (*models.Loan, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the loan row first so balance updates serialize per loan.
	loan := &models.Loan{}
	err = tx.QueryRow(`
		SELECT id, user_id, loan_type, amount, term_months, rate_percent, status, outstanding_balance, created_at, updated_at
		FROM lend.loans
		WHERE id = $1
		FOR UPDATE`, payment.LoanID).
		Scan(&loan.ID, &loan.UserID, &loan.LoanType, &loan.Amount, &loan.TermMonths,
			&loan.RatePercent, &loan.Status, &loan.OutstandingBalance, &loan.CreatedAt, &loan.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("loan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock loan: %w", err)
	}

	// Compare-and-swap on entry status: the losing concurrent caller
	// matches zero rows here and observes "already paid".
	res, err := tx.Exec(`
		UPDATE lend.emi_schedules
		SET status = $1, paid_date = $2
		WHERE id = $3 AND status = $4`,
		models.EntryPaid, payment.CreatedAt, payment.ScheduleEntryID, models.EntryScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to mark entry paid: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read entry update result: %w", err)
	}
	if rows == 0 {
		return nil, errs.Conflict("EMI already paid")
	}

	_, err = tx.Exec(`
		INSERT INTO lend.payments
			(id, loan_id, schedule_entry_id, amount, method, transaction_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		payment.ID, payment.LoanID, payment.ScheduleEntryID, payment.Amount,
		payment.Method, payment.TransactionID, payment.Status, payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	loan.OutstandingBalance -= principal
	loan.UpdatedAt = payment.CreatedAt
	if loan.OutstandingBalance <= models.ClosureEpsilon {
		loan.Status = models.LoanClosed
	}
	if _, err := tx.Exec(`
		UPDATE lend.loans
		SET status = $2, outstanding_balance = $3, updated_at = $4
		WHERE id = $1`,
		loan.ID, loan.Status, loan.OutstandingBalance, loan.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to update loan balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}
	return loan, nil
}

// GetPayment retrieves a payment by id
func (r *Repository) GetPayment(id string) (*models.Payment, error) {
	p := &models.Payment{}
	query := `
		SELECT id, loan_id, schedule_entry_id, amount, method, transaction_id, status, created_at
		FROM lend.payments
		WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&p.ID, &p.LoanID, &p.ScheduleEntryID,
		&p.Amount, &p.Method, &p.TransactionID, &p.Status, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return p, nil
}

// GetPaymentsByLoan retrieves all payments of a loan, newest first
func (r *Repository) GetPaymentsByLoan(loanID string) ([]models.Payment, error) {
	query := `
		SELECT id, loan_id, schedule_entry_id, amount, method, transaction_id, status, created_at
		FROM lend.payments
		WHERE loan_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()
	return scanPayments(rows)
}

// GetPaymentsByEntry retrieves payments recorded against a schedule entry
func (r *Repository) GetPaymentsByEntry(entryID string) ([]models.Payment, error) {
	query := `
		SELECT id, loan_id, schedule_entry_id, amount, method, transaction_id, status, created_at
		FROM lend.payments
		WHERE schedule_entry_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()
	return scanPayments(rows)
}

// CountCompletedPayments counts completed payments of a loan
func (r *Repository) CountCompletedPayments(loanID string) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*)
		FROM lend.payments
		WHERE loan_id = $1 AND status = $2`
	if err := r.db.QueryRow(query, loanID, models.PaymentCompleted).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

func scanPayments(rows *sql.Rows) ([]models.Payment, error) {
	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.LoanID, &p.ScheduleEntryID, &p.Amount,
			&p.Method, &p.TransactionID, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}
