package agent

import (
	"github.com/shopspring/decimal"

	"loanflow/internal/models"
)

const minCreditScore = 700

var two = decimal.NewFromInt(2)

// Underwrite is the central gate. Branches are evaluated in strict order and
// the first match wins:
//
//  1. customer missing from the registry → rejected
//  2. credit score below 700 → rejected
//  3. amount within the pre-approved limit → plain affordability check
//  4. amount within twice the limit → salary-escalation sub-flow, which may
//     park the decision as pending until a salary figure is supplied
//  5. amount beyond twice the limit → rejected
//
// The pending state is re-entrant: call again with freshSalary (or a profile
// that now carries a reported salary) to resolve it.
func Underwrite(cust *models.Customer, profile *models.ApplicantProfile, quote SalesQuote, freshSalary *decimal.Decimal) UnderwritingDecision {
	if cust == nil {
		return UnderwritingDecision{
			Decision:         DecisionRejected,
			Reason:           ReasonCustomerNotFound,
			PreApprovedLimit: decimal.Zero,
		}
	}

	limit := cust.PreApprovedLimit

	if cust.CreditScore < minCreditScore {
		return UnderwritingDecision{
			Decision:         DecisionRejected,
			Reason:           ReasonCreditScoreTooLow,
			PreApprovedLimit: limit,
		}
	}

	requested := profile.DesiredAmount
	tenure := quote.TenureMonths
	rate := quote.InterestRate

	if requested.LessThanOrEqual(limit) {
		emi := MonthlyInstallment(requested, rate, tenure)
		if profile.ExistingEMI.Add(emi).GreaterThan(half.Mul(profile.IncomeMonthly)) {
			return UnderwritingDecision{
				Decision:         DecisionRejected,
				Reason:           ReasonAffordabilityFailed,
				PreApprovedLimit: limit,
			}
		}
		return UnderwritingDecision{
			Decision: DecisionApproved,
			Offer: &OfferTerms{
				Amount:        requested,
				TenureMonths:  tenure,
				InterestRate:  rate,
				MonthlyEMI:    emi.Round(2),
				ReasonSummary: "Within pre-approved limit",
			},
			PreApprovedLimit: limit,
		}
	}

	if requested.LessThanOrEqual(two.Mul(limit)) {
		usedSalary := freshSalary
		if usedSalary == nil && profile.SalaryReported.Valid {
			usedSalary = &profile.SalaryReported.Decimal
		}
		if usedSalary == nil {
			return UnderwritingDecision{
				Decision:         DecisionPending,
				NextAction:       ActionRequireSalaryUpload,
				PreApprovedLimit: limit,
			}
		}

		emi := MonthlyInstallment(requested, rate, tenure)
		cap := half.Mul(*usedSalary)
		if emi.LessThanOrEqual(cap) && profile.ExistingEMI.Add(emi).LessThanOrEqual(cap) {
			return UnderwritingDecision{
				Decision: DecisionApproved,
				Offer: &OfferTerms{
					Amount:        requested,
					TenureMonths:  tenure,
					InterestRate:  rate,
					MonthlyEMI:    emi.Round(2),
					ReasonSummary: "Approved after salary verification",
				},
				PreApprovedLimit: limit,
			}
		}
		return UnderwritingDecision{
			Decision:         DecisionRejected,
			Reason:           ReasonAffordabilityFailedAfterSalary,
			PreApprovedLimit: limit,
		}
	}

	return UnderwritingDecision{
		Decision:         DecisionRejected,
		Reason:           ReasonExceedsDoubleLimit,
		PreApprovedLimit: limit,
	}
}
