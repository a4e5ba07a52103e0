package agent

import (
	"strings"

	"github.com/shopspring/decimal"

	"loanflow/internal/models"
)

var (
	rateDefault   = decimal.NewFromFloat(13.5)
	rateEducation = decimal.NewFromFloat(10.5)
	rateMSME      = decimal.NewFromFloat(15.5)
)

// BaseRateFor picks the annual interest rate by loan type. Unknown types get
// the personal-loan default.
func BaseRateFor(loanType string) decimal.Decimal {
	switch strings.ToLower(strings.TrimSpace(loanType)) {
	case "education loan":
		return rateEducation
	case "msme loan":
		return rateMSME
	default:
		return rateDefault
	}
}

// ProposeQuote echoes the requested amount and tenure with the rate for the
// profile's loan type. A missing profile still yields a safe default quote.
func ProposeQuote(profile *models.ApplicantProfile, amount decimal.Decimal, tenureMonths int) SalesQuote {
	if profile == nil {
		return SalesQuote{
			ProposedAmount: amount,
			TenureMonths:   tenureMonths,
			InterestRate:   rateDefault,
			Comment:        "profile missing",
		}
	}

	return SalesQuote{
		ProposedAmount: amount,
		TenureMonths:   tenureMonths,
		InterestRate:   BaseRateFor(profile.LoanType),
		Comment:        "Sales proposes requested amount",
	}
}
