package models

import "time"

// PaymentCompleted is the status a persisted payment always carries.
const PaymentCompleted = "COMPLETED"

// Payment represents a recorded repayment against a schedule entry
type Payment struct {
	ID              string    `json:"id"`
	LoanID          string    `json:"loan_id"`
	ScheduleEntryID string    `json:"schedule_entry_id"`
	Amount          float64   `json:"amount"`
	Method          string    `json:"method"` // BANK_TRANSFER, CHEQUE, CASH, ONLINE
	TransactionID   string    `json:"transaction_id,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
