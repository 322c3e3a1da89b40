package service

import (
	"context"
	"fmt"
)

// Decision is the outcome of an approval criteria evaluation.
type Decision struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// EvaluateApproval validates loan approval criteria in order: credit score,
// income eligibility, financial liabilities. Each failing check
// short-circuits with its reason. An unreachable profile service or a
// missing profile skips validation and approves: profile checks are advisory
// and their unavailability must not block lending operations.
func (s *Service) EvaluateApproval(ctx context.Context, userID string, loanAmount float64) Decision {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.log.Warnf("Approval criteria: profile fetch failed for user %s: %v", userID, err)
		return Decision{Approved: true, Reason: "Approved (profile validation skipped - profile service unavailable)"}
	}
	if profile == nil {
		return Decision{Approved: true, Reason: "Approved (profile not found - validation skipped)"}
	}

	// Check 1: credit score
	if profile.CreditScore == nil || *profile.CreditScore < s.cfg.MinCreditScore {
		score := "not set"
		if profile.CreditScore != nil {
			score = fmt.Sprintf("%.0f", *profile.CreditScore)
		}
		return Decision{Approved: false, Reason: fmt.Sprintf(
			"Credit score %s is below minimum required score of %.0f", score, s.cfg.MinCreditScore)}
	}

	// Check 2: income eligibility
	if profile.AnnualIncome == nil || *profile.AnnualIncome == 0 {
		return Decision{Approved: false, Reason: "Annual income not provided in profile"}
	}
	minimumRequiredIncome := loanAmount / s.cfg.IncomeMultiplier
	if *profile.AnnualIncome < minimumRequiredIncome {
		return Decision{Approved: false, Reason: fmt.Sprintf(
			"Annual income (%.0f) is insufficient. Required: %.0f for loan amount %.0f",
			*profile.AnnualIncome, minimumRequiredIncome, loanAmount)}
	}

	// Check 3: financial liabilities
	liabilities := 0.0
	if profile.TotalLiabilities != nil {
		liabilities = *profile.TotalLiabilities
	}
	maxAllowedLiability := loanAmount * s.cfg.LiabilityMultiplier
	if liabilities > maxAllowedLiability {
		return Decision{Approved: false, Reason: fmt.Sprintf(
			"Total liabilities (%.0f) exceed allowed limit (%.0f) for loan amount %.0f",
			liabilities, maxAllowedLiability, loanAmount)}
	}

	return Decision{Approved: true, Reason: "Approved based on credit score, income, and liability checks"}
}
