package models

// Profile is a borrower profile snapshot served by the profile service.
// Pointer fields distinguish "absent" from zero.
type Profile struct {
	UserID           string   `json:"user_id"`
	CreditScore      *float64 `json:"credit_score"`
	AnnualIncome     *float64 `json:"annual_income"`
	TotalLiabilities *float64 `json:"total_liabilities"`
}
