// Package email sends the transactional e-mails of the storefront.
// Delivery is fire-and-forget: failures are logged and never retried.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

// SendTimeout bounds one dispatched delivery.
const SendTimeout = 15 * time.Second

type Message struct {
	To      string
	Subject string
	HTML    string
	ReplyTo string
}

// Sender delivers a rendered message through a provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	log.Debug().Str("id", sent.Id).Str("to", msg.To).Msg("email accepted by provider")
	return nil
}

type Config struct {
	APIKey      string
	From        string
	AdminEmail  string
	FrontendURL string
}

// Mailer renders templates and hands messages to a Sender. A Mailer
// without a sender is valid; every send then logs and reports false.
type Mailer struct {
	sender      Sender
	adminEmail  string
	frontendURL string
	tmpl        *template.Template
	wg          sync.WaitGroup
}

func NewMailer(cfg Config) *Mailer {
	var sender Sender
	if cfg.APIKey != "" {
		sender = NewResendSender(cfg.APIKey, cfg.From)
	}
	return NewMailerWithSender(sender, cfg)
}

func NewMailerWithSender(sender Sender, cfg Config) *Mailer {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"label": statusLabel,
	}).ParseFS(templateFS, "templates/*.html"))
	return &Mailer{
		sender:      sender,
		adminEmail:  cfg.AdminEmail,
		frontendURL: cfg.FrontendURL,
		tmpl:        tmpl,
	}
}

func (m *Mailer) Configured() bool {
	return m != nil && m.sender != nil
}

// Send delivers msg synchronously. It returns false without an error when
// no provider is configured.
func (m *Mailer) Send(ctx context.Context, msg Message) (bool, error) {
	if !m.Configured() {
		log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email provider not configured, skipping send")
		return false, nil
	}
	if msg.To == "" {
		return false, fmt.Errorf("email %q has no recipient", msg.Subject)
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return false, err
	}
	return true, nil
}

// Dispatch sends msg in the background with SendTimeout. It reports
// whether a send was started.
func (m *Mailer) Dispatch(msg Message) bool {
	if !m.Configured() {
		log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email provider not configured, skipping send")
		return false
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), SendTimeout)
		defer cancel()
		if _, err := m.Send(ctx, msg); err != nil {
			log.Error().Err(err).Str("to", msg.To).Str("subject", msg.Subject).Msg("failed to send email")
		}
	}()
	return true
}

// Wait blocks until in-flight dispatches finish.
func (m *Mailer) Wait() {
	if m != nil {
		m.wg.Wait()
	}
}

func (m *Mailer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// deliver renders a template and dispatches the result.
func (m *Mailer) deliver(to, subject, name string, data any, replyTo string) bool {
	if m == nil {
		return false
	}
	html, err := m.render(name, data)
	if err != nil {
		log.Error().Err(err).Str("template", name).Msg("failed to render email")
		return false
	}
	return m.Dispatch(Message{To: to, Subject: subject, HTML: html, ReplyTo: replyTo})
}

// statusLabel turns "bank_transfer" into "Bank transfer".
func statusLabel(v any) string {
	s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
