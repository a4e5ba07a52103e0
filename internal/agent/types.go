package agent

import (
	"github.com/shopspring/decimal"
)

const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
	DecisionPending  = "pending"
)

const (
	ReasonCustomerNotFound               = "customer_not_found"
	ReasonCreditScoreTooLow              = "credit_score_too_low"
	ReasonAffordabilityFailed            = "affordability_failed"
	ReasonAffordabilityFailedAfterSalary = "affordability_failed_after_salary"
	ReasonExceedsDoubleLimit             = "exceeds_double_limit"
)

const (
	ActionPresentOffer        = "present_offer"
	ActionReject              = "reject"
	ActionRequireSalaryUpload = "require_salary_upload"
)

// EmotionResult is the mood detector's verdict for one user message.
type EmotionResult struct {
	Sentiment string `json:"sentiment"`
	Evidence  string `json:"evidence"`
}

// SalesQuote echoes the requested terms with a rate picked by loan type.
// Recomputed each turn, never persisted as authoritative state.
type SalesQuote struct {
	ProposedAmount decimal.Decimal `json:"proposed_amount"`
	TenureMonths   int             `json:"tenure_months"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	Comment        string          `json:"comment"`
}

// RiskAssessment is the quote after the income-ratio adjustment. The amount
// may shrink; tenure and rate never change here.
type RiskAssessment struct {
	AdjustedAmount decimal.Decimal `json:"adjusted_amount"`
	TenureMonths   int             `json:"tenure_months"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MonthlyEMI     decimal.Decimal `json:"monthly_emi"`
	Comment        string          `json:"comment"`
}

// OfferTerms is a finalized offer block.
type OfferTerms struct {
	Amount        decimal.Decimal `json:"amount"`
	TenureMonths  int             `json:"tenure_months"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
	MonthlyEMI    decimal.Decimal `json:"monthly_emi"`
	ReasonSummary string          `json:"reason_summary"`
}

// UnderwritingDecision is tri-state: approved, rejected, or pending a salary
// upload. Every outcome carries the registry's pre-approved limit snapshot
// (zero when the customer is missing).
type UnderwritingDecision struct {
	Decision         string          `json:"decision"`
	Reason           string          `json:"reason,omitempty"`
	Offer            *OfferTerms     `json:"offer,omitempty"`
	PreApprovedLimit decimal.Decimal `json:"pre_approved_limit"`
	NextAction       string          `json:"next_action,omitempty"`
}

func (d UnderwritingDecision) Approved() bool {
	return d.Decision == DecisionApproved
}

type ComplianceResult struct {
	Approved bool       `json:"approved"`
	Checks   []string   `json:"checks"`
	Offer    OfferTerms `json:"offer"`
}

type VerificationResult struct {
	Passed bool     `json:"verification_passed"`
	Issues []string `json:"issues,omitempty"`
}

// TraceEntry is one stage's audit line: agent name, one-line decision, and
// the stage's structured output.
type TraceEntry struct {
	Agent    string `json:"agent"`
	Decision string `json:"decision"`
	Details  any    `json:"details"`
}
