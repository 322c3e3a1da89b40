package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/models"
)

// ReplaceSchedule atomically removes any existing schedule for the loan and
// inserts the new ordered entries in a single transaction.
func (r *Repository) ReplaceSchedule(loanID string, entries []models.ScheduleEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM lend.emi_schedules WHERE loan_id = $1`, loanID); err != nil {
		return fmt.Errorf("failed to delete existing schedule: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO lend.emi_schedules
			(id, loan_id, month, emi_amount, principal_component, interest_component,
			 outstanding_balance_after, status, due_date, paid_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.ID, e.LoanID, e.Month, e.EMIAmount, e.PrincipalComponent,
			e.InterestComponent, e.OutstandingBalanceAfter, e.Status, e.DueDate, e.PaidDate, e.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert schedule entry %d: %w", e.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule: %w", err)
	}
	return nil
}

// GetSchedule retrieves the full schedule of a loan ordered by month
func (r *Repository) GetSchedule(loanID string) ([]models.ScheduleEntry, error) {
	query := `
		SELECT id, loan_id, month, emi_amount, principal_component, interest_component,
		       outstanding_balance_after, status, due_date, paid_date, created_at
		FROM lend.emi_schedules
		WHERE loan_id = $1
		ORDER BY month ASC`
	rows, err := r.db.Query(query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	defer rows.Close()
	return scanScheduleEntries(rows)
}

// GetScheduleEntry retrieves a single schedule entry by id
func (r *Repository) GetScheduleEntry(id string) (*models.ScheduleEntry, error) {
	e := &models.ScheduleEntry{}
	query := `
		SELECT id, loan_id, month, emi_amount, principal_component, interest_component,
		       outstanding_balance_after, status, due_date, paid_date, created_at
		FROM lend.emi_schedules
		WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&e.ID, &e.LoanID, &e.Month, &e.EMIAmount,
		&e.PrincipalComponent, &e.InterestComponent, &e.OutstandingBalanceAfter,
		&e.Status, &e.DueDate, &e.PaidDate, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("schedule entry not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule entry: %w", err)
	}
	return e, nil
}

// FindScheduledDueBetween returns unpaid entries whose due date falls inside
// [from, to). Used by the reminder scheduler.
func (r *Repository) FindScheduledDueBetween(from, to time.Time) ([]models.ScheduleEntry, error) {
	query := `
		SELECT id, loan_id, month, emi_amount, principal_component, interest_component,
		       outstanding_balance_after, status, due_date, paid_date, created_at
		FROM lend.emi_schedules
		WHERE status = $1 AND due_date >= $2 AND due_date < $3
		ORDER BY due_date ASC`
	rows, err := r.db.Query(query, models.EntryScheduled, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list due entries: %w", err)
	}
	defer rows.Close()
	return scanScheduleEntries(rows)
}

// FindScheduledOverdue returns unpaid entries whose due date has passed
func (r *Repository) FindScheduledOverdue(asOf time.Time) ([]models.ScheduleEntry, error) {
	query := `
		SELECT id, loan_id, month, emi_amount, principal_component, interest_component,
		       outstanding_balance_after, status, due_date, paid_date, created_at
		FROM lend.emi_schedules
		WHERE status = $1 AND due_date < $2
		ORDER BY due_date ASC`
	rows, err := r.db.Query(query, models.EntryScheduled, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue entries: %w", err)
	}
	defer rows.Close()
	return scanScheduleEntries(rows)
}

func scanScheduleEntries(rows *sql.Rows) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	for rows.Next() {
		var e models.ScheduleEntry
		if err := rows.Scan(&e.ID, &e.LoanID, &e.Month, &e.EMIAmount,
			&e.PrincipalComponent, &e.InterestComponent, &e.OutstandingBalanceAfter,
			&e.Status, &e.DueDate, &e.PaidDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule entries: %w", err)
	}
	return entries, nil
}
