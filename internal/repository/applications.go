package repository

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/utils"
	"github.com/lib/pq"
)

// Application amounts are stored encrypted. Encryption and decryption happen
// here, at the storage boundary, so the engine always works with plain values.

func (r *Repository) encryptAmount(amount float64) (string, error) {
	return utils.Encrypt(strconv.FormatFloat(amount, 'f', -1, 64), r.encryptionKey)
}

func (r *Repository) decryptAmount(enc string) (float64, error) {
	plain, err := utils.Decrypt(enc, r.encryptionKey)
	if err != nil {
		return 0, fmt.Errorf("failed to decrypt amount: %w", err)
	}
	amount, err := strconv.ParseFloat(plain, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse decrypted amount: %w", err)
	}
	return amount, nil
}

// CreateApplication stores a new loan application
func (r *Repository) CreateApplication(app *models.LoanApplication) error {
	amountEnc, err := r.encryptAmount(app.Amount)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO lend.loan_applications
			(id, user_id, loan_type, amount_enc, term_months, rate_percent, status, remarks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.Exec(query, app.ID, app.UserID, app.LoanType, amountEnc,
		app.TermMonths, app.RatePercent, app.Status, app.Remarks, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// GetApplication retrieves an application by id
func (r *Repository) GetApplication(id string) (*models.LoanApplication, error) {
	app := &models.LoanApplication{}
	var amountEnc string
	query := `
		SELECT id, user_id, loan_type, amount_enc, term_months, rate_percent, status, remarks, created_at, updated_at
		FROM lend.loan_applications
		WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&app.ID, &app.UserID, &app.LoanType, &amountEnc,
		&app.TermMonths, &app.RatePercent, &app.Status, &app.Remarks, &app.CreatedAt, &app.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("application not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app.Amount, err = r.decryptAmount(amountEnc); err != nil {
		return nil, err
	}
	return app, nil
}

// UpdateApplication persists status, remarks and the update timestamp
func (r *Repository) UpdateApplication(app *models.LoanApplication) error {
	query := `
		UPDATE lend.loan_applications
		SET status = $2, remarks = $3, updated_at = $4
		WHERE id = $1`
	res, err := r.db.Exec(query, app.ID, app.Status, app.Remarks, app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return errs.NotFound("application not found")
	}
	return nil
}

// ListApplicationsByUser retrieves all applications of a user
func (r *Repository) ListApplicationsByUser(userID string) ([]models.LoanApplication, error) {
	query := `
		SELECT id, user_id, loan_type, amount_enc, term_months, rate_percent, status, remarks, created_at, updated_at
		FROM lend.loan_applications
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()
	return r.scanApplications(rows)
}

// ListApplications retrieves all applications
func (r *Repository) ListApplications() ([]models.LoanApplication, error) {
	query := `
		SELECT id, user_id, loan_type, amount_enc, term_months, rate_percent, status, remarks, created_at, updated_at
		FROM lend.loan_applications
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()
	return r.scanApplications(rows)
}

// HasActiveApplication reports whether the user already has an application of
// the given loan type in one of the given statuses
func (r *Repository) HasActiveApplication(userID, loanType string, statuses []string) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM lend.loan_applications
		WHERE user_id = $1 AND loan_type = $2 AND status = ANY($3)`
	err := r.db.QueryRow(query, userID, loanType, pq.Array(statuses)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count active applications: %w", err)
	}
	return count > 0, nil
}

func (r *Repository) scanApplications(rows *sql.Rows) ([]models.LoanApplication, error) {
	var apps []models.LoanApplication
	for rows.Next() {
		var app models.LoanApplication
		var amountEnc string
		if err := rows.Scan(&app.ID, &app.UserID, &app.LoanType, &amountEnc,
			&app.TermMonths, &app.RatePercent, &app.Status, &app.Remarks, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		amount, err := r.decryptAmount(amountEnc)
		if err != nil {
			return nil, err
		}
		app.Amount = amount
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return apps, nil
}
