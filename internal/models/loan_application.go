package models

import "time"

// Application statuses
const (
	ApplicationSubmitted   = "SUBMITTED"
	ApplicationUnderReview = "UNDER_REVIEW"
	ApplicationApproved    = "APPROVED"
	ApplicationRejected    = "REJECTED"
)

// Loan types
const (
	LoanTypePersonal    = "PERSONAL"
	LoanTypeHome        = "HOME"
	LoanTypeAuto        = "AUTO"
	LoanTypeEducational = "EDUCATIONAL"
	LoanTypeHomeLoan    = "HOME_LOAN"
)

// ValidLoanType reports whether t is a known loan type.
func ValidLoanType(t string) bool {
	switch t {
	case LoanTypePersonal, LoanTypeHome, LoanTypeAuto, LoanTypeEducational, LoanTypeHomeLoan:
		return true
	}
	return false
}

// LoanApplication represents a loan application in the system
type LoanApplication struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	LoanType    string    `json:"loan_type"`
	Amount      float64   `json:"amount"`
	TermMonths  int       `json:"term_months"`
	RatePercent float64   `json:"rate_percent"`
	Status      string    `json:"status"`
	Remarks     string    `json:"remarks,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
