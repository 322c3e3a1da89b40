package models

import "time"

// Loan statuses
const (
	LoanPending = "PENDING"
	LoanActive  = "ACTIVE"
	LoanClosed  = "CLOSED"
)

// ClosureEpsilon is the balance below which a loan counts as fully repaid,
// absorbing floating point and rounding drift.
const ClosureEpsilon = 0.01

// Loan represents a disbursed loan
type Loan struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	LoanType           string    `json:"loan_type"`
	Amount             float64   `json:"amount"`
	TermMonths         int       `json:"term_months"`
	RatePercent        float64   `json:"rate_percent"`
	Status             string    `json:"status"`
	OutstandingBalance float64   `json:"outstanding_balance"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
