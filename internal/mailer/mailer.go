package mailer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"loanflow/internal/config"
)

// ErrNotConfigured reports that SMTP settings are missing. Callers
// treat it as non-fatal: the pipeline result stands, only delivery is
// skipped.
var ErrNotConfigured = errors.New("mailer: smtp not configured")

type Mailer struct {
	Host     string
	Port     int
	User     string
	Password string
	Sender   string
	Logger   *zap.Logger

	// send is swappable for tests
	send func(m *gomail.Message) error
}

func New(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	m := &Mailer{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Sender:   cfg.Sender,
		Logger:   logger,
	}
	m.send = func(msg *gomail.Message) error {
		d := gomail.NewDialer(m.Host, m.Port, m.User, m.Password)
		return d.DialAndSend(msg)
	}
	return m
}

func (m *Mailer) Configured() bool {
	return m != nil && m.Host != "" && m.User != "" && m.Password != ""
}

// SendSanctionLetter emails the approval notice with the generated PDF
// attached.
func (m *Mailer) SendSanctionLetter(toEmail, customerName, referenceID, pdfPath string) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nPlease find attached your sanction letter.\nRef: %s\n", customerName, referenceID)
	return m.Send(toEmail,
		fmt.Sprintf("Loanflow Sanction Letter [%s]", referenceID),
		body, pdfPath)
}

// Send delivers a plain-text message with an optional attachment.
func (m *Mailer) Send(toEmail, subject, body string, attachments ...string) error {
	if !m.Configured() {
		return ErrNotConfigured
	}

	sender := m.Sender
	if sender == "" {
		sender = m.User
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", sender)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	for _, path := range attachments {
		if path != "" {
			msg.Attach(path)
		}
	}

	if err := m.send(msg); err != nil {
		if m.Logger != nil {
			m.Logger.Warn("email delivery failed", zap.String("to", toEmail), zap.Error(err))
		}
		return err
	}
	return nil
}
