package models

import "time"

// Schedule entry statuses
const (
	EntryScheduled = "SCHEDULED"
	EntryPaid      = "PAID"
)

// ScheduleEntry represents one month of a loan's EMI schedule
type ScheduleEntry struct {
	ID                      string     `json:"id"`
	LoanID                  string     `json:"loan_id"`
	Month                   int        `json:"month"`
	EMIAmount               float64    `json:"emi_amount"`
	PrincipalComponent      float64    `json:"principal_component"`
	InterestComponent       float64    `json:"interest_component"`
	OutstandingBalanceAfter float64    `json:"outstanding_balance_after"`
	Status                  string     `json:"status"`
	DueDate                 time.Time  `json:"due_date"`
	PaidDate                *time.Time `json:"paid_date,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
}
