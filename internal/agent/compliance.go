package agent

import (
	"strings"

	"github.com/shopspring/decimal"

	"loanflow/internal/models"
)

const minComplianceAge = 21

var minComplianceIncome = decimal.NewFromInt(20000)

// CheckCompliance applies the hard eligibility gates on top of a
// risk-adjusted offer. Every gate is evaluated (no short-circuit) so the
// checks list and summary carry all failures, age first then income.
func CheckCompliance(profile *models.ApplicantProfile, assessment RiskAssessment) ComplianceResult {
	var checks, failures []string
	approved := true

	if profile.Age < minComplianceAge {
		approved = false
		checks = append(checks, "Age < 21")
		failures = append(failures, "Applicant must be at least 21 years old.")
	}
	if profile.IncomeMonthly.LessThan(minComplianceIncome) {
		approved = false
		checks = append(checks, "Income < 20,000")
		failures = append(failures, "Monthly income below minimum eligibility threshold.")
	}

	summary := "All basic compliance checks passed."
	if approved {
		checks = append(checks, "Age > 21", "Income > 20,000", "EMI ratio within safe limit")
	} else {
		summary = strings.Join(failures, " ")
	}

	return ComplianceResult{
		Approved: approved,
		Checks:   checks,
		Offer: OfferTerms{
			Amount:        assessment.AdjustedAmount,
			TenureMonths:  assessment.TenureMonths,
			InterestRate:  assessment.InterestRate,
			MonthlyEMI:    assessment.MonthlyEMI,
			ReasonSummary: summary,
		},
	}
}
