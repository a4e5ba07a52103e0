package agent

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"loanflow/internal/models"
)

func assessmentOf(amount int64) RiskAssessment {
	return RiskAssessment{
		AdjustedAmount: decimal.NewFromInt(amount),
		TenureMonths:   24,
		InterestRate:   decimal.RequireFromString("13.5"),
		MonthlyEMI:     decimal.RequireFromString("5291.67"),
	}
}

func TestCheckCompliance_UnderageRejectsRegardlessOfIncome(t *testing.T) {
	profile := &models.ApplicantProfile{Age: 20, IncomeMonthly: decimal.NewFromInt(900000)}
	res := CheckCompliance(profile, assessmentOf(100000))
	if res.Approved {
		t.Fatal("underage applicant approved")
	}
	if res.Checks[0] != "Age < 21" {
		t.Fatalf("checks=%v", res.Checks)
	}
}

func TestCheckCompliance_LowIncomeRejectsRegardlessOfAge(t *testing.T) {
	profile := &models.ApplicantProfile{Age: 45, IncomeMonthly: decimal.NewFromInt(19999)}
	res := CheckCompliance(profile, assessmentOf(100000))
	if res.Approved {
		t.Fatal("low-income applicant approved")
	}
	if res.Checks[0] != "Income < 20,000" {
		t.Fatalf("checks=%v", res.Checks)
	}
}

func TestCheckCompliance_BothGatesAggregated(t *testing.T) {
	profile := &models.ApplicantProfile{Age: 19, IncomeMonthly: decimal.NewFromInt(5000)}
	res := CheckCompliance(profile, assessmentOf(100000))
	if res.Approved {
		t.Fatal("approved despite failing both gates")
	}
	if len(res.Checks) != 2 || res.Checks[0] != "Age < 21" || res.Checks[1] != "Income < 20,000" {
		t.Fatalf("checks=%v", res.Checks)
	}
	summary := res.Offer.ReasonSummary
	if !strings.Contains(summary, "21 years") || !strings.Contains(summary, "minimum eligibility") {
		t.Fatalf("summary does not carry both failures: %q", summary)
	}
}

func TestCheckCompliance_PassEmitsMarkersAndMirrorsOffer(t *testing.T) {
	profile := &models.ApplicantProfile{Age: 30, IncomeMonthly: decimal.NewFromInt(50000)}
	assessment := assessmentOf(100000)

	res := CheckCompliance(profile, assessment)
	if !res.Approved {
		t.Fatalf("rejected: %v", res.Checks)
	}
	if len(res.Checks) != 3 {
		t.Fatalf("checks=%v want three passed markers", res.Checks)
	}
	if res.Offer.Amount.Cmp(assessment.AdjustedAmount) != 0 ||
		res.Offer.MonthlyEMI.Cmp(assessment.MonthlyEMI) != 0 ||
		res.Offer.TenureMonths != assessment.TenureMonths {
		t.Fatalf("offer does not mirror assessment: %+v", res.Offer)
	}
	if res.Offer.ReasonSummary != "All basic compliance checks passed." {
		t.Fatalf("summary=%q", res.Offer.ReasonSummary)
	}
}

func TestCheckCompliance_BoundaryValues(t *testing.T) {
	// Age 21 and income exactly 20,000 both pass.
	profile := &models.ApplicantProfile{Age: 21, IncomeMonthly: decimal.NewFromInt(20000)}
	if res := CheckCompliance(profile, assessmentOf(50000)); !res.Approved {
		t.Fatalf("boundary profile rejected: %v", res.Checks)
	}
}
