package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"storyloom/internal/config"
)

type Mailer interface {
	SendWelcome(ctx context.Context, to, username string) error
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(`<div style="max-width: 600px; margin: 0 auto; font-family: Arial, sans-serif;">
  <h1>Welcome to StoryLoom!</h1>
  <h2>Hello {{.Username}}!</h2>
  <p>We're excited to have you join our community of writers and readers.</p>
  <p><a href="{{.FrontendURL}}/home">Start Writing</a></p>
  <p>Happy writing!<br>The StoryLoom Team</p>
</div>`))

	resetTmpl = template.Must(template.New("reset").Parse(`<div style="max-width: 600px; margin: 0 auto; font-family: Arial, sans-serif;">
  <h1>StoryLoom</h1>
  <p>You requested a password reset for your StoryLoom account.</p>
  <p><a href="{{.ResetURL}}">Reset Password</a></p>
  <p>If the link does not work, paste this address into your browser:</p>
  <p>{{.ResetURL}}</p>
  <p>This link will expire in 10 minutes.</p>
  <p>If you didn't request this, ignore this email. Your password will remain unchanged.</p>
</div>`))
)

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// Sender delivers mail through gomail.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	sender      Sender
	from        string
	frontendURL string
	log         *zap.Logger
}

func NewSMTPMailer(cfg config.Email, frontendURL string, log *zap.Logger) *SMTPMailer {
	return NewSMTPMailerWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From, frontendURL, log)
}

func NewSMTPMailerWithSender(sender Sender, from, frontendURL string, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{sender: sender, from: from, frontendURL: frontendURL, log: log}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "StoryLoom")
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %q: %w", subject, err)
	}
	m.log.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (m *SMTPMailer) SendWelcome(_ context.Context, to, username string) error {
	body, err := render(welcomeTmpl, map[string]string{"Username": username, "FrontendURL": m.frontendURL})
	if err != nil {
		return err
	}
	return m.send(to, "Welcome to StoryLoom!", body)
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	body, err := render(resetTmpl, map[string]string{"ResetURL": resetURL})
	if err != nil {
		return err
	}
	return m.send(to, "Password Reset Request - StoryLoom", body)
}

// LogMailer only logs. Used when no SMTP host is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendWelcome(_ context.Context, to, username string) error {
	m.log.Info("Welcome email not sent, SMTP disabled", zap.String("to", to), zap.String("username", username))
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	m.log.Info("Password reset email not sent, SMTP disabled", zap.String("to", to), zap.String("url", resetURL))
	return nil
}

// New picks the SMTP mailer when a host is configured.
func New(cfg config.Email, frontendURL string, log *zap.Logger) Mailer {
	if cfg.Host == "" {
		return NewLogMailer(log)
	}
	return NewSMTPMailer(cfg, frontendURL, log)
}
