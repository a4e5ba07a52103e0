package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"loanflow/internal/agent"
	"loanflow/internal/llm"
	"loanflow/internal/models"
	"loanflow/internal/pdf"
	"loanflow/internal/repository"
)

const historyWindow = 6

const systemPrompt = "You are an emotionally aware, empathetic yet analytical loan sanctioning agent. " +
	"For each query you will be provided with short lines from worker agents (Sales, Verification, Underwriting, Compliance). " +
	"You will assess them and return a strict JSON only with fields: Response, Agents, Salary_slip, Finalise. " +
	"Do NOT include tokens like <s>, </s>, [OUTST], [/OUTST], or any markup."

// ReplyModel phrases the deterministic pipeline outcome for the
// customer. Implemented by llm.Client; stubbed in tests.
type ReplyModel interface {
	Configured() bool
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SanctionMailer delivers the approval email. Implemented by
// mailer.Mailer.
type SanctionMailer interface {
	Configured() bool
	SendSanctionLetter(toEmail, customerName, referenceID, pdfPath string) error
}

// ChatService drives one conversation turn end to end. The pipeline
// decides; the language model only phrases. Every model failure is
// absorbed into the pipeline's deterministic message.
type ChatService struct {
	Repo        repository.Repository
	Pipeline    *agent.Pipeline
	Model       ReplyModel
	Mailer      SanctionMailer
	Logger      *zap.Logger
	UploadsRoot string

	// WritePDF is swappable for tests; defaults to the gofpdf renderer.
	WritePDF func(path string, letter pdf.SanctionLetter) error
}

type Reply struct {
	Text         string            `json:"text"`
	NextAction   string            `json:"next_action,omitempty"`
	IsFinalOffer bool              `json:"is_final_offer,omitempty"`
	FinalOffer   *agent.OfferTerms `json:"final_offer,omitempty"`
}

type TurnResult struct {
	SessionID uuid.UUID     `json:"session_id"`
	Reply     Reply         `json:"reply"`
	Outcome   agent.Outcome `json:"internal_log"`
}

// HandleMessage runs one applicant turn: persist the user message, run
// the agent pipeline, phrase the reply, persist the audit log, and
// move the session state machine.
func (s *ChatService) HandleMessage(ctx context.Context, sessionID uuid.UUID, text, moodOverride string) (*TurnResult, error) {
	sess, err := s.Repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	profile, err := s.Repo.GetProfileBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}

	if err := s.Repo.InsertMessage(ctx, &models.Message{
		SessionID: sessionID, Sender: models.SenderUser, Text: text,
	}); err != nil {
		return nil, err
	}

	outcome := s.Pipeline.Run(ctx, agent.Input{
		Message:      text,
		MoodOverride: moodOverride,
		Profile:      profile,
	})

	directive, modelErr := s.phrase(ctx, profile, sessionID, &outcome)

	logPayload := map[string]any{
		"outcome":     outcome,
		"agent_lines": agentLines(outcome),
	}
	if modelErr != nil {
		logPayload["model_error"] = modelErr.Error()
	} else {
		logPayload["model_response"] = directive
	}

	result := &TurnResult{
		SessionID: sessionID,
		Reply:     Reply{Text: directive.Response, NextAction: outcome.NextAction},
		Outcome:   outcome,
	}

	var offer *models.Offer
	switch {
	case outcome.PendingSalary || directive.SalarySlip:
		sess.Status = models.SessionAwaitingSalary
		result.Reply.NextAction = agent.ActionRequireSalaryUpload

	case outcome.FinalOffer != nil:
		offer = s.offerFromTerms(sessionID, profile, *outcome.FinalOffer, outcome)
		if err := s.Repo.InsertOffer(ctx, offer); err != nil {
			return nil, err
		}
		sess.LatestOfferID = &offer.ID
		sess.Status = models.SessionOfferGenerated
		result.Reply.IsFinalOffer = true
		result.Reply.FinalOffer = outcome.FinalOffer

	default:
		offer = s.rejectedOffer(sessionID, profile, outcome)
		if err := s.Repo.InsertOffer(ctx, offer); err != nil {
			return nil, err
		}
		sess.Status = models.SessionRejected
	}

	agentLog := models.AgentLog{SessionID: sessionID, Log: mustJSON(logPayload)}
	if offer != nil {
		agentLog.OfferID = &offer.ID
	}
	if err := s.Repo.InsertAgentLog(ctx, &agentLog); err != nil {
		return nil, err
	}

	if err := s.Repo.InsertMessage(ctx, &models.Message{
		SessionID: sessionID, Sender: models.SenderBot, Text: directive.Response,
	}); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateSession(ctx, sess); err != nil {
		return nil, err
	}

	if directive.Finalise && sess.Status == models.SessionOfferGenerated {
		if _, _, err := s.Finalize(ctx, sessionID); err != nil && s.Logger != nil {
			s.Logger.Warn("finalize after model directive failed", zap.Error(err))
		}
	}

	return result, nil
}

// ResumeAfterSalary re-runs the pipeline once the applicant declares a
// verified salary. The figure comes from the request body only; the
// uploaded file path is stored for audit, never parsed.
func (s *ChatService) ResumeAfterSalary(ctx context.Context, sessionID uuid.UUID, declaredSalary decimal.Decimal, slipPath string) (*TurnResult, error) {
	if !declaredSalary.IsPositive() {
		return nil, ErrInvalidInput
	}

	sess, err := s.Repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	profile, err := s.Repo.GetProfileBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}

	profile.SalaryReported = decimal.NullDecimal{Decimal: declaredSalary, Valid: true}
	if err := s.Repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	outcome := s.Pipeline.Run(ctx, agent.Input{
		Message:     "uploaded salary slip",
		Profile:     profile,
		FreshSalary: &declaredSalary,
	})

	logPayload := map[string]any{
		"salary_resume":    outcome,
		"salary_slip_path": slipPath,
	}

	result := &TurnResult{SessionID: sessionID, Outcome: outcome}

	var offer *models.Offer
	if outcome.FinalOffer != nil {
		offer = s.offerFromTerms(sessionID, profile, *outcome.FinalOffer, outcome)
		offer.SalarySlipPath = slipPath
		if err := s.Repo.InsertOffer(ctx, offer); err != nil {
			return nil, err
		}
		sess.LatestOfferID = &offer.ID
		sess.Status = models.SessionOfferGenerated
		result.Reply = Reply{
			Text:         "Offer approved after salary upload",
			NextAction:   agent.ActionPresentOffer,
			IsFinalOffer: true,
			FinalOffer:   outcome.FinalOffer,
		}
	} else {
		offer = s.rejectedOffer(sessionID, profile, outcome)
		offer.SalarySlipPath = slipPath
		if err := s.Repo.InsertOffer(ctx, offer); err != nil {
			return nil, err
		}
		sess.Status = models.SessionRejected
		result.Reply = Reply{
			Text:       "Offer rejected after salary upload",
			NextAction: agent.ActionReject,
		}
	}

	agentLog := models.AgentLog{SessionID: sessionID, OfferID: &offer.ID, Log: mustJSON(logPayload)}
	if err := s.Repo.InsertAgentLog(ctx, &agentLog); err != nil {
		return nil, err
	}
	if err := s.Repo.InsertMessage(ctx, &models.Message{
		SessionID: sessionID, Sender: models.SenderBot, Text: result.Reply.Text,
	}); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateSession(ctx, sess); err != nil {
		return nil, err
	}
	return result, nil
}

// RenderSanctionLetter renders the latest approved offer to a PDF on
// disk and returns its path. It does not touch session state, so the
// handler can serve the letter on demand.
func (s *ChatService) RenderSanctionLetter(ctx context.Context, sessionID uuid.UUID) (string, string, error) {
	offer, err := s.Repo.GetLatestOfferBySession(ctx, sessionID)
	if err != nil {
		return "", "", err
	}
	if offer == nil || offer.Status != models.OfferApproved {
		return "", "", ErrNotFound
	}
	profile, err := s.Repo.GetProfileBySession(ctx, sessionID)
	if err != nil {
		return "", "", err
	}
	if profile == nil {
		return "", "", ErrNotFound
	}

	referenceID := strings.Split(uuid.NewString(), "-")[0]
	pdfPath := filepath.Join(s.UploadsRoot, sessionID.String(), fmt.Sprintf("sanction_%s.pdf", referenceID))

	writePDF := s.WritePDF
	if writePDF == nil {
		writePDF = pdf.WriteSanctionLetter
	}
	if err := writePDF(pdfPath, pdf.SanctionLetter{
		ReferenceID:  referenceID,
		CustomerName: profile.Name,
		Offer:        *offer,
		AuditLines:   s.auditLines(ctx, sessionID),
	}); err != nil {
		return "", "", err
	}
	return pdfPath, referenceID, nil
}

// Finalize completes the session: render the sanction letter, email it
// when an address is on file, and close the state machine. Rendering
// or delivery failures are logged and do not undo the completion.
func (s *ChatService) Finalize(ctx context.Context, sessionID uuid.UUID) (*models.Offer, string, error) {
	sess, err := s.Repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	if sess == nil {
		return nil, "", ErrNotFound
	}
	offer, err := s.Repo.GetLatestOfferBySession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	if offer == nil || offer.Status != models.OfferApproved {
		return nil, "", ErrNotFound
	}
	profile, err := s.Repo.GetProfileBySession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	if profile == nil {
		return nil, "", ErrNotFound
	}

	pdfPath, referenceID, err := s.RenderSanctionLetter(ctx, sessionID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("sanction letter rendering failed", zap.Error(err))
		}
		pdfPath = ""
	}

	if profile.Email != "" && s.Mailer != nil && s.Mailer.Configured() {
		if err := s.Mailer.SendSanctionLetter(profile.Email, profile.Name, referenceID, pdfPath); err != nil && s.Logger != nil {
			s.Logger.Warn("sanction letter email failed", zap.String("to", profile.Email), zap.Error(err))
		}
	}

	sess.Status = models.SessionCompleted
	if err := s.Repo.UpdateSession(ctx, sess); err != nil {
		return nil, "", err
	}
	return offer, pdfPath, nil
}

// RerunAgents re-executes selected pipeline stages for one session.
// Debugging aid behind the admin surface; nothing is persisted.
func (s *ChatService) RerunAgents(ctx context.Context, sessionID uuid.UUID, agents []string) (map[string]any, error) {
	profile, err := s.Repo.GetProfileBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}

	results := map[string]any{}
	var quote agent.SalesQuote
	quoteReady := false
	salesQuote := func() agent.SalesQuote {
		if !quoteReady {
			quote = agent.ProposeQuote(profile, profile.DesiredAmount, profile.DesiredTenureMonths)
			quoteReady = true
		}
		return quote
	}

	for _, name := range agents {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "emotion":
			results["emotion"] = agent.DetectEmotion("", profile.Mood)
		case "sales":
			results["sales"] = salesQuote()
		case "verification":
			cust, err := s.Pipeline.Registry.GetCustomer(ctx, profile.CustomerID)
			if err != nil {
				cust = nil
			}
			results["verification"] = agent.VerifyCustomer(cust, profile.CustomerID)
		case "underwriting":
			cust, err := s.Pipeline.Registry.GetCustomer(ctx, profile.CustomerID)
			if err != nil {
				cust = nil
			}
			results["underwriting"] = agent.Underwrite(cust, profile, salesQuote(), nil)
		case "risk":
			results["risk"] = agent.AssessRisk(profile, salesQuote())
		case "compliance":
			results["compliance"] = agent.CheckCompliance(profile, agent.AssessRisk(profile, salesQuote()))
		}
	}
	return results, nil
}

// phrase asks the model to word the reply. Any failure, including an
// unconfigured model, falls back to the pipeline's own message.
func (s *ChatService) phrase(ctx context.Context, profile *models.ApplicantProfile, sessionID uuid.UUID, outcome *agent.Outcome) (llm.Directive, error) {
	fallback := llm.Directive{
		Response:   outcome.AssistantMessage,
		SalarySlip: outcome.PendingSalary,
	}

	if s.Model == nil || !s.Model.Configured() {
		if fallback.Response == "" {
			fallback.Response = llm.NotConfiguredMessage
		}
		return fallback, llm.ErrNotConfigured
	}

	history, err := s.Repo.ListMessages(ctx, sessionID)
	if err != nil {
		history = nil
	}
	prompt := buildPrompt(profile, history, agentLines(*outcome))

	raw, err := s.Model.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("reply model failed", zap.Error(err))
		}
		if fallback.Response == "" {
			fallback.Response = llm.BusyMessage
		}
		return fallback, err
	}

	directive, err := llm.ParseDirective(raw)
	if err != nil {
		// plain chat text is still a usable reply
		if text := llm.Sanitize(raw); text != "" {
			fallback.Response = text
		}
		return fallback, nil
	}
	if directive.Response == "" {
		directive.Response = outcome.AssistantMessage
	}
	return directive, nil
}

func buildPrompt(profile *models.ApplicantProfile, history []models.Message, lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer profile: name=%s, income_monthly=%s, existing_emi=%s\n\nConversation:\n",
		profile.Name, profile.IncomeMonthly.String(), profile.ExistingEMI.String())

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, m := range history[start:] {
		fmt.Fprintf(&b, "%s: %q\n", m.Sender, m.Text)
	}

	b.WriteString("\nAgent messages:\n")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\nReturn STRICT JSON only, for example:\n" +
		`{ "Response": "text", "Agents": ["compliance"], "Salary_slip": false, "Finalise": false }` +
		"\nRespond now with JSON only.")
	return b.String()
}

func agentLines(o agent.Outcome) []string {
	lines := []string{
		fmt.Sprintf("Sales agent: %q", fmt.Sprintf("%s for %d months at %s%% - %s",
			o.Quote.ProposedAmount.String(), o.Quote.TenureMonths, o.Quote.InterestRate.String(), o.Quote.Comment)),
	}
	if o.Verification != nil {
		if o.Verification.Passed {
			lines = append(lines, `Verification agent: "passed"`)
		} else {
			lines = append(lines, fmt.Sprintf("Verification agent: %q", "issues: "+strings.Join(o.Verification.Issues, ",")))
		}
	}
	if o.Underwriting != nil {
		switch {
		case o.Underwriting.Approved():
			lines = append(lines, fmt.Sprintf("Underwriting agent: %q", o.Underwriting.Offer.ReasonSummary))
		case o.Underwriting.Decision == agent.DecisionPending:
			lines = append(lines, fmt.Sprintf("Underwriting agent: %q", "awaiting "+o.Underwriting.NextAction))
		default:
			lines = append(lines, fmt.Sprintf("Underwriting agent: %q", "Decision: "+o.Underwriting.Reason))
		}
	}
	if o.Risk != nil {
		lines = append(lines, fmt.Sprintf("Risk agent: %q", o.Risk.Comment))
	}
	if o.Compliance != nil {
		lines = append(lines, fmt.Sprintf("Compliance agent: %q", o.Compliance.Offer.ReasonSummary))
	}
	return lines
}

func (s *ChatService) offerFromTerms(sessionID uuid.UUID, profile *models.ApplicantProfile, terms agent.OfferTerms, o agent.Outcome) *models.Offer {
	offer := &models.Offer{
		SessionID:       sessionID,
		RequestedAmount: profile.DesiredAmount,
		Amount:          terms.Amount,
		TenureMonths:    terms.TenureMonths,
		InterestRate:    terms.InterestRate,
		MonthlyEMI:      terms.MonthlyEMI,
		Status:          models.OfferApproved,
		ReasonSummary:   terms.ReasonSummary,
	}
	if o.Underwriting != nil {
		offer.PreApprovedLimit = decimal.NullDecimal{Decimal: o.Underwriting.PreApprovedLimit, Valid: true}
	}
	return offer
}

func (s *ChatService) rejectedOffer(sessionID uuid.UUID, profile *models.ApplicantProfile, o agent.Outcome) *models.Offer {
	offer := &models.Offer{
		SessionID:       sessionID,
		RequestedAmount: profile.DesiredAmount,
		Amount:          decimal.Zero,
		TenureMonths:    profile.DesiredTenureMonths,
		InterestRate:    o.Quote.InterestRate,
		MonthlyEMI:      decimal.Zero,
		Status:          models.OfferRejected,
	}
	if o.Underwriting != nil {
		offer.DecisionReason = o.Underwriting.Reason
		offer.ReasonSummary = o.Underwriting.Reason
		offer.PreApprovedLimit = decimal.NullDecimal{Decimal: o.Underwriting.PreApprovedLimit, Valid: true}
	} else if o.Compliance != nil {
		offer.ReasonSummary = o.Compliance.Offer.ReasonSummary
	}
	return offer
}

func (s *ChatService) auditLines(ctx context.Context, sessionID uuid.UUID) []string {
	logs, err := s.Repo.ListAgentLogs(ctx, sessionID)
	if err != nil || len(logs) == 0 {
		return nil
	}
	latest := logs[len(logs)-1]

	var payload struct {
		AgentLines []string `json:"agent_lines"`
	}
	if err := json.Unmarshal(latest.Log, &payload); err != nil {
		return nil
	}
	return payload.AgentLines
}

func mustJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		b = []byte(fmt.Sprintf(`{"marshal_error":%q}`, err.Error()))
	}
	return datatypes.JSON(b)
}
