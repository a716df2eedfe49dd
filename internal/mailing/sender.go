// Package mailing sends the outbound HTML email: welcome emails for
// leaders entering onboarding, training rebook emails, and the daily
// digest. A global kill switch pauses all sending without touching the
// rest of the workflows.
package mailing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// Sender delivers HTML email over authenticated SMTP with STARTTLS.
type Sender struct {
	host     string
	port     int
	username string
	password string
	from     string
	enabled  bool
	logger   *slog.Logger
}

// NewSender builds a Sender. enabled=false turns every Send into a logged
// no-op so a bad template or a paused campaign never reaches a leader.
func NewSender(host string, port int, username, password, from string, enabled bool, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		enabled:  enabled,
		logger:   logger,
	}
}

// Enabled reports whether the kill switch allows sending.
func (s *Sender) Enabled() bool { return s.enabled }

// Send delivers one HTML message.
func (s *Sender) Send(ctx context.Context, to, subject, html string) error {
	return s.send(ctx, to, subject, html, mail.TypeTextHTML)
}

// SendPlain delivers a plain-text message, used for the operations
// alerts.
func (s *Sender) SendPlain(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body, mail.TypeTextPlain)
}

// SendReport delivers an HTML message to a recipient list with optional
// CC, used for the daily digest and training report.
func (s *Sender) SendReport(ctx context.Context, to, cc []string, subject, html string) error {
	if !s.enabled {
		s.logger.Info("email paused (kill switch)", "subject", subject)
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid from address %q: %w", s.from, err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("invalid recipient list %v: %w", to, err)
	}
	if len(cc) > 0 {
		if err := msg.Cc(cc...); err != nil {
			return fmt.Errorf("invalid cc list %v: %w", cc, err)
		}
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	if err := s.deliver(ctx, msg); err != nil {
		return fmt.Errorf("failed to send report %q: %w", subject, err)
	}
	s.logger.Info("report email sent", "subject", subject, "recipients", len(to)+len(cc))
	return nil
}

func (s *Sender) send(ctx context.Context, to, subject, body string, contentType mail.ContentType) error {
	if !s.enabled {
		s.logger.Info("email paused (kill switch)", "to", to, "subject", subject)
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid from address %q: %w", s.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(contentType, body)

	if err := s.deliver(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

// deliver dials a fresh SMTP session per message; the volumes here are a
// handful of emails per run.
func (s *Sender) deliver(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
