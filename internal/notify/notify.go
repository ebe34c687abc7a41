// Package notify is the outbound notification port. Delivery is best effort:
// callers run it off the request path and only log failures.
package notify

import (
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"

	"partsrfq/internal/config"
)

type Notifier interface {
	Notify(destination, subject, body string) error
}

// New picks the SMTP mailer when a host is configured, the log-only notifier
// otherwise.
func New(cfg config.SMTPConfig) Notifier {
	if cfg.SMTPHost == "" {
		return &LogNotifier{}
	}
	return NewSMTPNotifier(cfg)
}

type SMTPNotifier struct {
	cfg config.SMTPConfig
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) Notify(destination, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.SMTPFrom)
	fmt.Fprintf(&msg, "To: %s\r\n", destination)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if n.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUsername, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	}

	addr := net.JoinHostPort(n.cfg.SMTPHost, n.cfg.SMTPPort)
	err := smtp.SendMail(addr, auth, n.cfg.SMTPFrom, []string{destination}, []byte(msg.String()))
	if err != nil {
		return fmt.Errorf("notify.SMTPNotifier.Notify: %w", err)
	}
	return nil
}

// LogNotifier stands in for a real mailer in development and tests.
type LogNotifier struct{}

func (n *LogNotifier) Notify(destination, subject, body string) error {
	log.Printf("notify: to=%s subject=%q", destination, subject)
	return nil
}
