package agent

import (
	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	half    = decimal.NewFromFloat(0.5)
)

// MonthlyInstallment is the flat simple-interest EMI approximation used by
// every stage: amount * (1 + rate/100 * tenure/12) / tenure.
func MonthlyInstallment(amount, ratePct decimal.Decimal, tenureMonths int) decimal.Decimal {
	if tenureMonths <= 0 {
		return decimal.Zero
	}
	tenure := decimal.NewFromInt(int64(tenureMonths))
	factor := one.Add(ratePct.Div(hundred).Mul(tenure.Div(twelve)))
	return amount.Mul(factor).Div(tenure)
}
