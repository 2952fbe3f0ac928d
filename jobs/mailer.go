package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

// MailerConfig collects SMTP settings for outbound email.
type MailerConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminEmail string
	SiteName   string
}

// Mailer delivers contact-form emails over SMTP.
type Mailer struct {
	cfg    MailerConfig
	logger *slog.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer constructs a Mailer. The send function is swappable for tests.
func NewMailer(cfg MailerConfig, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// HandleContactEmail processes TaskTypeContactEmail tasks. It sends the
// notification to the site administrator first, then a confirmation back to
// the visitor. The auto-reply is best effort: the admin already has the
// message, so a bounce on the reply is only logged.
func (m *Mailer) HandleContactEmail(ctx context.Context, t *asynq.Task) error {
	var payload ContactEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	notify := m.notificationMessage(payload)
	if err := m.deliver(m.cfg.AdminEmail, notify); err != nil {
		return fmt.Errorf("notify admin: %w", err)
	}

	reply := m.autoReplyMessage(payload)
	if err := m.deliver(payload.Email, reply); err != nil {
		m.logger.Warn("contact auto-reply failed",
			slog.String("to", payload.Email),
			slog.Any("error", err),
		)
	}

	m.logger.Info("contact emails sent",
		slog.String("from", payload.Email),
		slog.String("name", payload.Name),
	)
	return nil
}

func (m *Mailer) deliver(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return m.send(addr, auth, m.cfg.From, []string{to}, msg)
}

func (m *Mailer) notificationMessage(p ContactEmailPayload) []byte {
	subject := fmt.Sprintf("New contact message from %s", p.Name)
	body := strings.Join([]string{
		"You have received a new message through the contact form.",
		"",
		"Name: " + p.Name,
		"Email: " + p.Email,
		"Received: " + time.Now().UTC().Format(time.RFC1123),
		"",
		"Message:",
		p.Message,
	}, "\r\n")
	return buildMessage(m.cfg.From, m.cfg.AdminEmail, subject, body)
}

func (m *Mailer) autoReplyMessage(p ContactEmailPayload) []byte {
	subject := fmt.Sprintf("Thanks for reaching out to %s", m.cfg.SiteName)
	body := strings.Join([]string{
		"Hi " + p.Name + ",",
		"",
		"Thanks for your message! I have received it and will get back to you as soon as possible.",
		"",
		"For reference, here is a copy of what you sent:",
		"",
		p.Message,
		"",
		"Best regards,",
		m.cfg.SiteName,
	}, "\r\n")
	return buildMessage(m.cfg.From, p.Email, subject, body)
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
