package agent

import (
	"github.com/shopspring/decimal"

	"loanflow/internal/models"
)

var reductionFactor = decimal.NewFromFloat(0.8)

// AssessRisk compares the quote's EMI plus existing obligations against the
// applicant's income. A ratio above 50% cuts the amount by a flat 20%
// (floored to a whole currency unit) and recomputes the EMI at the same rate
// and tenure. Zero income counts as ratio exceeded.
func AssessRisk(profile *models.ApplicantProfile, quote SalesQuote) RiskAssessment {
	emi := MonthlyInstallment(quote.ProposedAmount, quote.InterestRate, quote.TenureMonths)

	exceeded := true
	if profile.IncomeMonthly.IsPositive() {
		ratio := emi.Add(profile.ExistingEMI).Div(profile.IncomeMonthly)
		exceeded = ratio.GreaterThan(half)
	}

	adjusted := quote.ProposedAmount
	comment := "Risk within acceptable limits."
	if exceeded {
		adjusted = quote.ProposedAmount.Mul(reductionFactor).Floor()
		emi = MonthlyInstallment(adjusted, quote.InterestRate, quote.TenureMonths)
		comment = "EMI exceeded 50% of income. Amount reduced for safety."
	}

	return RiskAssessment{
		AdjustedAmount: adjusted,
		TenureMonths:   quote.TenureMonths,
		InterestRate:   quote.InterestRate,
		MonthlyEMI:     emi.Round(2),
		Comment:        comment,
	}
}
