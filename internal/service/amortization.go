package service

import (
	"math"

	"github.com/Dan9191/loan-service/internal/errs"
)

// CalculateEMI computes the equated monthly installment using the standard
// reducing-balance formula:
//
//	EMI = P * r * (1 + r)^n / ((1 + r)^n - 1)
//
// where P is the principal, r the monthly rate (annual / 12 / 100) and n the
// term in months. A zero annual rate degenerates to principal / termMonths.
func CalculateEMI(principal, annualRatePercent float64, termMonths int) (float64, error) {
	if principal <= 0 || termMonths <= 0 {
		return 0, errs.InvalidArgument("principal and term months must be positive")
	}

	if annualRatePercent == 0 {
		return principal / float64(termMonths), nil
	}

	monthlyRate := annualRatePercent / 12 / 100
	factor := math.Pow(1+monthlyRate, float64(termMonths))
	return principal * monthlyRate * factor / (factor - 1), nil
}

// CalculateOutstandingBalance computes the principal remaining after
// paymentsCompleted installments, as the present value of the remaining
// annuity payments.
func CalculateOutstandingBalance(principal, annualRatePercent float64, termMonths, paymentsCompleted int) (float64, error) {
	emi, err := CalculateEMI(principal, annualRatePercent, termMonths)
	if err != nil {
		return 0, err
	}

	monthlyRate := annualRatePercent / 12 / 100
	if monthlyRate == 0 {
		return math.Max(0, principal-emi*float64(paymentsCompleted)), nil
	}

	remaining := termMonths - paymentsCompleted
	if remaining <= 0 {
		return 0, nil
	}

	factor := math.Pow(1+monthlyRate, float64(remaining))
	return emi * (factor - 1) / (monthlyRate * factor), nil
}

// round2 rounds a money value to 2 decimal places, half up.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
