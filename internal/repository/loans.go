package repository

import (
	"database/sql"
	"fmt"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/models"
)

// CreateLoan stores a new loan
func (r *Repository) CreateLoan(loan *models.Loan) error {
	query := `
		INSERT INTO lend.loans
			(id, user_id, loan_type, amount, term_months, rate_percent, status, outstanding_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(query, loan.ID, loan.UserID, loan.LoanType, loan.Amount,
		loan.TermMonths, loan.RatePercent, loan.Status, loan.OutstandingBalance, loan.CreatedAt, loan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// GetLoan retrieves a loan by id
func (r *Repository) GetLoan(id string) (*models.Loan, error) {
	loan := &models.Loan{}
	query := `
		SELECT id, user_id, loan_type, amount, term_months, rate_percent, status, outstanding_balance, created_at, updated_at
		FROM lend.loans
		WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&loan.ID, &loan.UserID, &loan.LoanType, &loan.Amount,
		&loan.TermMonths, &loan.RatePercent, &loan.Status, &loan.OutstandingBalance, &loan.CreatedAt, &loan.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("loan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find loan: %w", err)
	}
	return loan, nil
}

// UpdateLoan persists status, balance and the update timestamp
func (r *Repository) UpdateLoan(loan *models.Loan) error {
	query := `
		UPDATE lend.loans
		SET status = $2, outstanding_balance = $3, updated_at = $4
		WHERE id = $1`
	res, err := r.db.Exec(query, loan.ID, loan.Status, loan.OutstandingBalance, loan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return errs.NotFound("loan not found")
	}
	return nil
}

// ListLoans retrieves all loans
func (r *Repository) ListLoans() ([]models.Loan, error) {
	query := `
		SELECT id, user_id, loan_type, amount, term_months, rate_percent, status, outstanding_balance, created_at, updated_at
		FROM lend.loans
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()
	return scanLoans(rows)
}

// ListLoansByUser retrieves all loans of a user
func (r *Repository) ListLoansByUser(userID string) ([]models.Loan, error) {
	query := `
		SELECT id, user_id, loan_type, amount, term_months, rate_percent, status, outstanding_balance, created_at, updated_at
		FROM lend.loans
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()
	return scanLoans(rows)
}

func scanLoans(rows *sql.Rows) ([]models.Loan, error) {
	var loans []models.Loan
	for rows.Next() {
		var loan models.Loan
		if err := rows.Scan(&loan.ID, &loan.UserID, &loan.LoanType, &loan.Amount,
			&loan.TermMonths, &loan.RatePercent, &loan.Status, &loan.OutstandingBalance,
			&loan.CreatedAt, &loan.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loans: %w", err)
	}
	return loans, nil
}
