package contact

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"
)

// Message is one submitted form.
type Message struct {
	Fields
	// Origin identifies the submitter without revealing them (a salted hash,
	// or empty when the visitor opted out of tracking).
	Origin string
	SentAt time.Time
}

// Sender delivers a message. Implementations must be safe to call from
// multiple goroutines.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (fn SenderFunc) Send(ctx context.Context, msg Message) error { return fn(ctx, msg) }

// SimulatedSender waits Delay and reports success. It never fails unless
// the context ends first.
type SimulatedSender struct {
	Delay time.Duration
}

func (s SimulatedSender) Send(ctx context.Context, msg Message) error {
	select {
	case <-time.After(s.Delay):
		log.Printf("contact: simulated delivery of %q from %s", msg.Subject, msg.Email)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SMTPConfig holds outgoing mail settings.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

// SMTPSender mails each message to the site owner with the visitor as Reply-To.
type SMTPSender struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender returns a sender for cfg.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.cfg.User == "" || s.cfg.Pass == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}

	body := composeMail(s.cfg, msg)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	addr := s.cfg.Host + ":" + s.cfg.Port

	done := make(chan error, 1)
	go func() {
		done <- s.sendMail(addr, auth, s.cfg.User, []string{s.cfg.To}, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("sending mail via %s: %w", addr, err)
		}
		log.Printf("contact: email sent from %s (%s)", msg.Name, msg.Email)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sending mail via %s: %w", addr, ctx.Err())
	}
}

func composeMail(cfg SMTPConfig, msg Message) []byte {
	subject := headerSafe(fmt.Sprintf("Portfolio Contact: %s", msg.Subject))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Message:
%s

---
Sent from your portfolio contact form
`, msg.Name, msg.Email, msg.Subject, msg.Message)

	return []byte("To: " + cfg.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + cfg.User + "\r\n" +
		"Reply-To: " + headerSafe(msg.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// headerSafe keeps visitor input from starting new mail headers.
func headerSafe(s string) string {
	return headerBreaks.Replace(s)
}
