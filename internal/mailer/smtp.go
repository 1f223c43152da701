package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer sends HTML email over plain SMTP auth.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (m *SMTPMailer) SendWelcome(_ context.Context, msg WelcomeEmail) error {
	subject := fmt.Sprintf("Welcome aboard, %s", msg.Name)
	return m.send(msg.Email, subject, welcomeBody(msg))
}

func (m *SMTPMailer) SendDigest(_ context.Context, msg DigestEmail) error {
	subject := fmt.Sprintf("Your Market News Summary - %s", msg.Date)
	return m.send(msg.Email, subject, digestBody(msg))
}

func (m *SMTPMailer) send(to, subject, body string) error {
	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.from,
		to,
		subject,
		body,
	)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(raw)); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}

	return nil
}

const emailStyle = `<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 640px; margin: 0 auto; padding: 20px; color: #333; }
h1 { color: #1a1a2e; border-bottom: 2px solid #0f3460; padding-bottom: 10px; }
.content { margin-top: 16px; }
.footer { margin-top: 24px; color: #888; font-size: 0.85em; }
</style>`

func welcomeBody(msg WelcomeEmail) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head>")
	sb.WriteString(emailStyle)
	sb.WriteString("</head><body>")
	sb.WriteString(fmt.Sprintf("<h1>Welcome, %s</h1>", msg.Name))
	sb.WriteString(fmt.Sprintf(`<div class="content"><p>%s</p></div>`, msg.Intro))
	sb.WriteString(`<div class="footer">You are receiving this because you signed up for a stock tracker account.</div>`)
	sb.WriteString("</body></html>")
	return sb.String()
}

func digestBody(msg DigestEmail) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html><html><head>")
	sb.WriteString(emailStyle)
	sb.WriteString("</head><body>")
	sb.WriteString(fmt.Sprintf("<h1>Market News - %s</h1>", msg.Date))
	sb.WriteString(fmt.Sprintf(`<div class="content">%s</div>`, msg.Content))
	sb.WriteString(`<div class="footer">Daily digest based on your watchlist.</div>`)
	sb.WriteString("</body></html>")
	return sb.String()
}
