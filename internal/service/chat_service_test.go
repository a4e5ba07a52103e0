package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"loanflow/internal/agent"
	"loanflow/internal/models"
	"loanflow/internal/pdf"
	memoryrepository "loanflow/internal/repository/memory"
)

type stubModel struct {
	configured bool
	reply      string
	err        error
}

func (m *stubModel) Configured() bool { return m.configured }

func (m *stubModel) Complete(_ context.Context, _, _ string) (string, error) {
	return m.reply, m.err
}

type stubMailer struct {
	sentTo []string
	fail   bool
}

func (m *stubMailer) Configured() bool { return true }

func (m *stubMailer) SendSanctionLetter(toEmail, _, _, _ string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sentTo = append(m.sentTo, toEmail)
	return nil
}

func seedCustomerFixture(t *testing.T, repo *memoryrepository.Store) {
	t.Helper()
	err := repo.UpsertCustomer(context.Background(), &models.Customer{
		CustomerID:       "CUST001",
		Name:             "Asha Verma",
		Email:            "asha@example.com",
		Phone:            "9999999999",
		Address:          "12 MG Road",
		CreditScore:      750,
		PreApprovedLimit: decimal.NewFromInt(500000),
		IncomeMonthly:    decimal.NewFromInt(60000),
		ExistingEMI:      decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
}

func newChatFixture(t *testing.T, model ReplyModel) (*ChatService, *SessionService, *memoryrepository.Store) {
	t.Helper()
	repo := memoryrepository.New()
	seedCustomerFixture(t, repo)

	registry := &RegistryService{Repo: repo, Logger: zap.NewNop()}
	chat := &ChatService{
		Repo:        repo,
		Pipeline:    &agent.Pipeline{Registry: registry, Logger: zap.NewNop()},
		Model:       model,
		Mailer:      &stubMailer{},
		Logger:      zap.NewNop(),
		UploadsRoot: t.TempDir(),
		WritePDF:    func(string, pdf.SanctionLetter) error { return nil },
	}
	sessions := &SessionService{Repo: repo, Logger: zap.NewNop()}
	return chat, sessions, repo
}

func startSession(t *testing.T, sessions *SessionService, customerID string, amount int64) *models.LoanSession {
	t.Helper()
	sess, _, err := sessions.Start(context.Background(), StartSessionInput{
		CustomerID:          customerID,
		Name:                "Asha Verma",
		Email:               "asha@example.com",
		Age:                 32,
		LoanType:            "Personal Loan",
		IncomeMonthly:       decimal.NewFromInt(60000),
		ExistingEMI:         decimal.NewFromInt(5000),
		DesiredAmount:       decimal.NewFromInt(amount),
		DesiredTenureMonths: 24,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return sess
}

func TestHandleMessageApprovedWithoutModel(t *testing.T) {
	chat, sessions, repo := newChatFixture(t, &stubModel{configured: false})
	sess := startSession(t, sessions, "CUST001", 100000)

	res, err := chat.HandleMessage(context.Background(), sess.ID, "I need a loan of 100000", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !res.Reply.IsFinalOffer || res.Reply.FinalOffer == nil {
		t.Fatalf("expected final offer, got %+v", res.Reply)
	}
	if res.Reply.Text == "" {
		t.Fatalf("expected deterministic fallback reply text")
	}
	if got := res.Reply.FinalOffer.MonthlyEMI.StringFixed(2); got != "5291.67" {
		t.Fatalf("EMI = %s", got)
	}

	updated, _ := repo.GetSession(context.Background(), sess.ID)
	if updated.Status != models.SessionOfferGenerated {
		t.Fatalf("session status = %s", updated.Status)
	}
	offer, _ := repo.GetLatestOfferBySession(context.Background(), sess.ID)
	if offer == nil || offer.Status != models.OfferApproved {
		t.Fatalf("persisted offer = %+v", offer)
	}

	msgs, _ := repo.ListMessages(context.Background(), sess.ID)
	if len(msgs) != 2 || msgs[0].Sender != models.SenderUser || msgs[1].Sender != models.SenderBot {
		t.Fatalf("messages = %+v", msgs)
	}
	logs, _ := repo.ListAgentLogs(context.Background(), sess.ID)
	if len(logs) != 1 {
		t.Fatalf("agent logs = %d", len(logs))
	}
}

func TestHandleMessageModelPhrasesReply(t *testing.T) {
	model := &stubModel{
		configured: true,
		reply:      `{"Response":"Great news, your loan is approved!","Agents":[],"Salary_slip":false,"Finalise":false}`,
	}
	chat, sessions, _ := newChatFixture(t, model)
	sess := startSession(t, sessions, "CUST001", 100000)

	res, err := chat.HandleMessage(context.Background(), sess.ID, "hello", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if res.Reply.Text != "Great news, your loan is approved!" {
		t.Fatalf("reply text = %q", res.Reply.Text)
	}
}

func TestHandleMessageModelFailureFallsBack(t *testing.T) {
	model := &stubModel{configured: true, err: errors.New("boom")}
	chat, sessions, repo := newChatFixture(t, model)
	sess := startSession(t, sessions, "CUST001", 100000)

	res, err := chat.HandleMessage(context.Background(), sess.ID, "hello", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if res.Reply.Text == "" || !res.Reply.IsFinalOffer {
		t.Fatalf("fallback reply = %+v", res.Reply)
	}

	logs, _ := repo.ListAgentLogs(context.Background(), sess.ID)
	var payload map[string]any
	if err := json.Unmarshal(logs[0].Log, &payload); err != nil {
		t.Fatalf("log payload: %v", err)
	}
	if _, ok := payload["model_error"]; !ok {
		t.Fatalf("expected model_error in log payload, keys: %v", payload)
	}
}

func TestHandleMessagePlainTextModelReplyStillUsed(t *testing.T) {
	model := &stubModel{configured: true, reply: "Happy to help with your loan."}
	chat, sessions, _ := newChatFixture(t, model)
	sess := startSession(t, sessions, "CUST001", 100000)

	res, err := chat.HandleMessage(context.Background(), sess.ID, "hello", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if res.Reply.Text != "Happy to help with your loan." {
		t.Fatalf("reply text = %q", res.Reply.Text)
	}
}

func TestHandleMessageSalaryEscalationPending(t *testing.T) {
	chat, sessions, repo := newChatFixture(t, &stubModel{})
	sess := startSession(t, sessions, "CUST001", 700000)

	res, err := chat.HandleMessage(context.Background(), sess.ID, "I need 700000", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if res.Reply.NextAction != agent.ActionRequireSalaryUpload {
		t.Fatalf("next action = %s", res.Reply.NextAction)
	}
	updated, _ := repo.GetSession(context.Background(), sess.ID)
	if updated.Status != models.SessionAwaitingSalary {
		t.Fatalf("session status = %s", updated.Status)
	}
}

func TestHandleMessageRejectedPersistsReason(t *testing.T) {
	chat, sessions, repo := newChatFixture(t, &stubModel{})
	sess := startSession(t, sessions, "CUST001", 2000000)

	if _, err := chat.HandleMessage(context.Background(), sess.ID, "I need 2000000", ""); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	updated, _ := repo.GetSession(context.Background(), sess.ID)
	if updated.Status != models.SessionRejected {
		t.Fatalf("session status = %s", updated.Status)
	}
	offer, _ := repo.GetLatestOfferBySession(context.Background(), sess.ID)
	if offer == nil || offer.Status != models.OfferRejected || offer.DecisionReason != agent.ReasonExceedsDoubleLimit {
		t.Fatalf("persisted offer = %+v", offer)
	}
}

func TestHandleMessageUnknownSession(t *testing.T) {
	chat, _, _ := newChatFixture(t, &stubModel{})
	if _, err := chat.HandleMessage(context.Background(), uuid.New(), "hi", ""); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResumeAfterSalaryApproved(t *testing.T) {
	chat, sessions, repo := newChatFixture(t, &stubModel{})
	sess := startSession(t, sessions, "CUST001", 700000)
	if _, err := chat.HandleMessage(context.Background(), sess.ID, "I need 700000", ""); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	// EMI on 700000/13.5%/24m is 37041.67; with 5000 existing EMI a
	// declared salary of 90000 clears both half-salary checks.
	res, err := chat.ResumeAfterSalary(context.Background(), sess.ID, decimal.NewFromInt(90000), "uploads/slip.pdf")
	if err != nil {
		t.Fatalf("ResumeAfterSalary: %v", err)
	}
	if !res.Reply.IsFinalOffer {
		t.Fatalf("expected approval after salary, got %+v", res.Reply)
	}

	updated, _ := repo.GetSession(context.Background(), sess.ID)
	if updated.Status != models.SessionOfferGenerated {
		t.Fatalf("session status = %s", updated.Status)
	}
	offer, _ := repo.GetLatestOfferBySession(context.Background(), sess.ID)
	if offer.SalarySlipPath != "uploads/slip.pdf" {
		t.Fatalf("slip path = %q", offer.SalarySlipPath)
	}
	if offer.ReasonSummary != "Approved after salary verification" {
		t.Fatalf("reason summary = %q", offer.ReasonSummary)
	}

	profile, _ := repo.GetProfileBySession(context.Background(), sess.ID)
	if !profile.SalaryReported.Valid || !profile.SalaryReported.Decimal.Equal(decimal.NewFromInt(90000)) {
		t.Fatalf("salary reported = %+v", profile.SalaryReported)
	}
}

func TestResumeAfterSalaryRejected(t *testing.T) {
	chat, sessions, repo := newChatFixture(t, &stubModel{})
	sess := startSession(t, sessions, "CUST001", 700000)
	if _, err := chat.HandleMessage(context.Background(), sess.ID, "I need 700000", ""); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	res, err := chat.ResumeAfterSalary(context.Background(), sess.ID, decimal.NewFromInt(45000), "")
	if err != nil {
		t.Fatalf("ResumeAfterSalary: %v", err)
	}
	if res.Reply.IsFinalOffer {
		t.Fatalf("expected rejection, got %+v", res.Reply)
	}
	updated, _ := repo.GetSession(context.Background(), sess.ID)
	if updated.Status != models.SessionRejected {
		t.Fatalf("session status = %s", updated.Status)
	}
	offer, _ := repo.GetLatestOfferBySession(context.Background(), sess.ID)
	if offer.DecisionReason != agent.ReasonAffordabilityFailedAfterSalary {
		t.Fatalf("decision reason = %q", offer.DecisionReason)
	}
}

func TestResumeAfterSalaryRejectsNonPositive(t *testing.T) {
	chat, sessions, _ := newChatFixture(t, &stubModel{})
	sess := startSession(t, sessions, "CUST001", 700000)
	if _, err := chat.ResumeAfterSalary(context.Background(), sess.ID, decimal.Zero, ""); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFinalizeCompletesAndEmails(t *testing.T) {
	mail := &stubMailer{}
	chat, sessions, repo := newChatFixture(t, &stubModel{})
	chat.Mailer = mail
	sess := startSession(t, sessions, "CUST001", 100000)
	if _, err := chat.HandleMessage(context.Background(), sess.ID, "I need 100000", ""); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	offer, pdfPath, err := chat.Finalize(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if offer.Status != models.OfferApproved {
		t.Fatalf("offer status = %s", offer.Status)
	}
	if pdfPath == "" {
		t.Fatalf("expected a pdf path")
	}
	if len(mail.sentTo) != 1 || mail.sentTo[0] != "asha@example.com" {
		t.Fatalf("mail recipients = %v", mail.sentTo)
	}
	updated, _ := repo.GetSession(context.Background(), sess.ID)
	if updated.Status != models.SessionCompleted {
		t.Fatalf("session status = %s", updated.Status)
	}
}

func TestFinalizeMailFailureNonFatal(t *testing.T) {
	chat, sessions, repo := newChatFixture(t, &stubModel{})
	chat.Mailer = &stubMailer{fail: true}
	sess := startSession(t, sessions, "CUST001", 100000)
	if _, err := chat.HandleMessage(context.Background(), sess.ID, "I need 100000", ""); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if _, _, err := chat.Finalize(context.Background(), sess.ID); err != nil {
		t.Fatalf("Finalize should absorb mail failure: %v", err)
	}
	updated, _ := repo.GetSession(context.Background(), sess.ID)
	if updated.Status != models.SessionCompleted {
		t.Fatalf("session status = %s", updated.Status)
	}
}

func TestFinalizeWithoutApprovedOffer(t *testing.T) {
	chat, sessions, _ := newChatFixture(t, &stubModel{})
	sess := startSession(t, sessions, "CUST001", 2000000)
	if _, err := chat.HandleMessage(context.Background(), sess.ID, "huge loan", ""); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if _, _, err := chat.Finalize(context.Background(), sess.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRerunAgentsSelectsStages(t *testing.T) {
	chat, sessions, _ := newChatFixture(t, &stubModel{})
	sess := startSession(t, sessions, "CUST001", 100000)

	results, err := chat.RerunAgents(context.Background(), sess.ID, []string{"sales", "underwriting", "verification"})
	if err != nil {
		t.Fatalf("RerunAgents: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %v", results)
	}
	uw, ok := results["underwriting"].(agent.UnderwritingDecision)
	if !ok || !uw.Approved() {
		t.Fatalf("underwriting result = %+v", results["underwriting"])
	}
}

func TestWalkInAdvisoryPath(t *testing.T) {
	chat, sessions, repo := newChatFixture(t, &stubModel{})
	sess := startSession(t, sessions, "", 100000)

	res, err := chat.HandleMessage(context.Background(), sess.ID, "I want a loan", "")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if res.Outcome.Risk == nil || res.Outcome.Compliance == nil {
		t.Fatalf("expected advisory stages, got %+v", res.Outcome)
	}
	if !res.Reply.IsFinalOffer {
		t.Fatalf("expected advisory offer, got %+v", res.Reply)
	}
	updated, _ := repo.GetSession(context.Background(), sess.ID)
	if updated.Status != models.SessionOfferGenerated {
		t.Fatalf("session status = %s", updated.Status)
	}
}
