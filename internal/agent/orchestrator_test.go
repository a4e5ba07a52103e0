package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"loanflow/internal/models"
)

type stubRegistry struct {
	customers map[string]*models.Customer
	err       error
}

func (s *stubRegistry) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.customers[id], nil
}

func fullProfile(amount int64) *models.ApplicantProfile {
	return &models.ApplicantProfile{
		CustomerID:          "CUST001",
		Name:                "Asha",
		Age:                 30,
		LoanType:            "Personal Loan",
		IncomeMonthly:       decimal.NewFromInt(50000),
		ExistingEMI:         decimal.NewFromInt(500),
		DesiredAmount:       decimal.NewFromInt(amount),
		DesiredTenureMonths: 24,
	}
}

func TestPipeline_RegistryPathApproved(t *testing.T) {
	p := &Pipeline{Registry: &stubRegistry{customers: map[string]*models.Customer{
		"CUST001": {CustomerID: "CUST001", CreditScore: 750, PreApprovedLimit: decimal.NewFromInt(500000), Phone: "99", Address: "x"},
	}}}

	out := p.Run(context.Background(), Input{Message: "hello", Profile: fullProfile(100000)})
	if out.NextAction != ActionPresentOffer {
		t.Fatalf("next_action=%s", out.NextAction)
	}
	if out.FinalOffer == nil || out.FinalOffer.ReasonSummary != "Within pre-approved limit" {
		t.Fatalf("final offer=%+v", out.FinalOffer)
	}
	if out.Underwriting == nil || out.Risk != nil || out.Compliance != nil {
		t.Fatal("registry path must run underwriting, not the advisory variant")
	}

	wantAgents := []string{"EmotionAgent", "SalesAgent", "VerificationAgent", "UnderwritingAgent", "OrchestratorAgent"}
	if len(out.Trace) != len(wantAgents) {
		t.Fatalf("trace=%d entries, want %d", len(out.Trace), len(wantAgents))
	}
	for i, name := range wantAgents {
		if out.Trace[i].Agent != name {
			t.Fatalf("trace[%d]=%s want=%s", i, out.Trace[i].Agent, name)
		}
	}
	if len(out.DecisionLog) != 1 || out.DecisionLog[0] != "Final decision consolidated by Orchestrator" {
		t.Fatalf("decision log=%v", out.DecisionLog)
	}
}

func TestPipeline_RegistryPathPendingSalary(t *testing.T) {
	p := &Pipeline{Registry: &stubRegistry{customers: map[string]*models.Customer{
		"CUST001": {CustomerID: "CUST001", CreditScore: 750, PreApprovedLimit: decimal.NewFromInt(500000)},
	}}}

	out := p.Run(context.Background(), Input{Message: "need more", Profile: fullProfile(600000)})
	if out.NextAction != ActionRequireSalaryUpload || !out.PendingSalary {
		t.Fatalf("next_action=%s pending=%v", out.NextAction, out.PendingSalary)
	}
	if out.FinalOffer != nil {
		t.Fatal("pending turn must not carry a final offer")
	}
}

func TestPipeline_RegistryFaultDegradesToNotFound(t *testing.T) {
	p := &Pipeline{Registry: &stubRegistry{err: errors.New("registry down")}}

	out := p.Run(context.Background(), Input{Message: "hi", Profile: fullProfile(100000)})
	if out.NextAction != ActionReject {
		t.Fatalf("next_action=%s", out.NextAction)
	}
	if out.Underwriting == nil || out.Underwriting.Reason != ReasonCustomerNotFound {
		t.Fatalf("underwriting=%+v", out.Underwriting)
	}
}

func TestPipeline_WalkInAdvisoryPath(t *testing.T) {
	profile := fullProfile(100000)
	profile.CustomerID = ""
	p := &Pipeline{Registry: &stubRegistry{}}

	out := p.Run(context.Background(), Input{Message: "quote please", Profile: profile})
	if out.Underwriting != nil {
		t.Fatal("walk-in applicant must not hit underwriting")
	}
	if out.Risk == nil || out.Compliance == nil {
		t.Fatal("advisory path must run risk and compliance")
	}
	if out.NextAction != ActionPresentOffer {
		t.Fatalf("next_action=%s", out.NextAction)
	}
}

func TestPipeline_MoodOverrideInTrace(t *testing.T) {
	p := &Pipeline{Registry: &stubRegistry{}}
	profile := fullProfile(100000)
	profile.CustomerID = ""

	out := p.Run(context.Background(), Input{Message: "hello", MoodOverride: "stressed", Profile: profile})
	if out.Emotion.Sentiment != "stressed" || out.Emotion.Evidence != "user-selected" {
		t.Fatalf("emotion=%+v", out.Emotion)
	}
}
