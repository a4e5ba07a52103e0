package agent

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"loanflow/internal/models"
)

// CustomerRegistry is the only external contract the pipeline depends on.
// A missing customer is (nil, nil), not an error.
type CustomerRegistry interface {
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)
}

// Pipeline runs one applicant turn start to finish: emotion → sales →
// verification → underwriting when the applicant carries a customer id, or
// the income-ratio risk + compliance variant when they do not. Each stage is
// a pure function; the orchestrator threads outputs forward explicitly.
type Pipeline struct {
	Registry CustomerRegistry
	Logger   *zap.Logger
}

type Input struct {
	Message      string
	MoodOverride string
	Profile      *models.ApplicantProfile
	FreshSalary  *decimal.Decimal
}

// Outcome is the assembled state for one turn. Underwriting is set on the
// registry-driven path; Risk and Compliance on the walk-in path.
type Outcome struct {
	Emotion      EmotionResult         `json:"emotion_agent"`
	Quote        SalesQuote            `json:"sales_agent"`
	Verification *VerificationResult   `json:"verification_agent,omitempty"`
	Underwriting *UnderwritingDecision `json:"underwriting_agent,omitempty"`
	Risk         *RiskAssessment       `json:"risk_agent,omitempty"`
	Compliance   *ComplianceResult     `json:"compliance_agent,omitempty"`

	Trace       []TraceEntry `json:"agent_trace"`
	DecisionLog []string     `json:"decision_log"`

	AssistantMessage string      `json:"assistant_message"`
	NextAction       string      `json:"next_action"`
	FinalOffer       *OfferTerms `json:"final_offer,omitempty"`
	PendingSalary    bool        `json:"pending_salary"`
}

const (
	msgOffer   = "Based on your profile, here is a compliant loan offer for your review."
	msgReject  = "We cannot proceed due to policy constraints. Would you like to explore alternative options?"
	msgPending = "To assess this amount we need income verification. Please upload your latest salary slip."
)

func (p *Pipeline) Run(ctx context.Context, in Input) Outcome {
	out := Outcome{}
	profile := in.Profile

	out.Emotion = DetectEmotion(in.Message, in.MoodOverride)
	out.trace("EmotionAgent", "Detected applicant mood: "+out.Emotion.Sentiment, out.Emotion)

	out.Quote = ProposeQuote(profile, profile.DesiredAmount, profile.DesiredTenureMonths)
	out.trace("SalesAgent", "Proposed "+out.Quote.InterestRate.String()+"% on requested terms", out.Quote)

	if profile.CustomerID != "" {
		p.runUnderwriting(ctx, in, &out)
	} else {
		p.runAdvisory(in, &out)
	}

	out.DecisionLog = append(out.DecisionLog, "Final decision consolidated by Orchestrator")
	out.trace("OrchestratorAgent", "Produced final customer-facing outcome", out.NextAction)
	return out
}

// runUnderwriting is the registry-driven variant: the canonical approval gate.
func (p *Pipeline) runUnderwriting(ctx context.Context, in Input, out *Outcome) {
	profile := in.Profile

	cust, err := p.Registry.GetCustomer(ctx, profile.CustomerID)
	if err != nil {
		// Registry faults degrade to customer-not-found; the turn still
		// resolves to a well-formed decision.
		if p.Logger != nil {
			p.Logger.Warn("registry lookup failed", zap.String("customer_id", profile.CustomerID), zap.Error(err))
		}
		cust = nil
	}

	verification := VerifyCustomer(cust, profile.CustomerID)
	out.Verification = &verification
	out.trace("VerificationAgent", verificationLine(verification), verification)

	decision := Underwrite(cust, profile, out.Quote, in.FreshSalary)
	out.Underwriting = &decision
	out.trace("UnderwritingAgent", underwritingLine(decision), decision)

	switch decision.Decision {
	case DecisionApproved:
		out.FinalOffer = decision.Offer
		out.NextAction = ActionPresentOffer
		out.AssistantMessage = msgOffer
	case DecisionPending:
		out.PendingSalary = true
		out.NextAction = ActionRequireSalaryUpload
		out.AssistantMessage = msgPending
	default:
		out.NextAction = ActionReject
		out.AssistantMessage = msgReject
	}
}

// runAdvisory is the income-ratio variant for applicants with no registry id.
func (p *Pipeline) runAdvisory(in Input, out *Outcome) {
	profile := in.Profile

	assessment := AssessRisk(profile, out.Quote)
	out.Risk = &assessment
	out.trace("RiskAgent", assessment.Comment, assessment)

	compliance := CheckCompliance(profile, assessment)
	out.Compliance = &compliance
	out.trace("ComplianceAgent", compliance.Offer.ReasonSummary, compliance)

	if compliance.Approved {
		offer := compliance.Offer
		out.FinalOffer = &offer
		out.NextAction = ActionPresentOffer
		out.AssistantMessage = msgOffer
	} else {
		out.NextAction = ActionReject
		out.AssistantMessage = msgReject
	}
}

func (o *Outcome) trace(agentName, decision string, details any) {
	o.Trace = append(o.Trace, TraceEntry{Agent: agentName, Decision: decision, Details: details})
}

func verificationLine(v VerificationResult) string {
	if v.Passed {
		return "passed"
	}
	return "issues: " + strings.Join(v.Issues, ",")
}

func underwritingLine(d UnderwritingDecision) string {
	switch d.Decision {
	case DecisionApproved:
		return d.Offer.ReasonSummary
	case DecisionPending:
		return "awaiting " + d.NextAction
	default:
		return d.Reason
	}
}
