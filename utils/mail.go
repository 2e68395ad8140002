// fotohub/utils/mail.go
package utils

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	Addr string // host:port
	Auth smtp.Auth
}

func NewSMTPMailer(host, port, username, password string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{Addr: host + ":" + port, Auth: auth}
}

func (m *SMTPMailer) Send(subject, body, from string, to []string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		from, strings.Join(to, ", "), subject, body)
	return smtp.SendMail(m.Addr, m.Auth, from, to, []byte(msg))
}

// LogMailer writes outgoing mail to the log instead of delivering it. Used
// when no SMTP relay is configured, and in tests.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(subject, body, from string, to []string) error {
	m.Logger.Info("mail (not delivered, no SMTP relay configured)",
		"subject", subject, "from", from, "to", strings.Join(to, ", "))
	return nil
}
