package mailer

import (
	"testing"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"loanflow/internal/config"
)

func TestSendNotConfigured(t *testing.T) {
	m := New(config.SMTPConfig{}, zap.NewNop())
	if m.Configured() {
		t.Fatalf("mailer with no host should not report configured")
	}
	if err := m.Send("a@b.com", "subject", "body"); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSendSanctionLetterHeaders(t *testing.T) {
	m := New(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "bot@example.com",
		Password: "secret",
		Sender:   "no-reply@example.com",
	}, zap.NewNop())

	var captured *gomail.Message
	m.send = func(msg *gomail.Message) error {
		captured = msg
		return nil
	}

	if err := m.SendSanctionLetter("asha@example.com", "Asha Verma", "abc123", ""); err != nil {
		t.Fatalf("SendSanctionLetter: %v", err)
	}
	if captured == nil {
		t.Fatalf("message was not sent")
	}
	if got := captured.GetHeader("To"); len(got) != 1 || got[0] != "asha@example.com" {
		t.Fatalf("To header = %v", got)
	}
	if got := captured.GetHeader("From"); len(got) != 1 || got[0] != "no-reply@example.com" {
		t.Fatalf("From header = %v", got)
	}
	if got := captured.GetHeader("Subject"); len(got) != 1 || got[0] != "Loanflow Sanction Letter [abc123]" {
		t.Fatalf("Subject header = %v", got)
	}
}

func TestSendFallsBackToUserAsSender(t *testing.T) {
	m := New(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "bot@example.com",
		Password: "secret",
	}, zap.NewNop())

	var captured *gomail.Message
	m.send = func(msg *gomail.Message) error {
		captured = msg
		return nil
	}

	if err := m.Send("a@b.com", "s", "b"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := captured.GetHeader("From"); len(got) != 1 || got[0] != "bot@example.com" {
		t.Fatalf("From header = %v", got)
	}
}
