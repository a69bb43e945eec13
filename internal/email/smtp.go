package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mrmailer/mrmailer/internal/config"
	"github.com/mrmailer/mrmailer/internal/model"
	"github.com/wneessen/go-mail"
)

// Transport names
const (
	TransportPrimary  = "primary"
	TransportFallback = "fallback"
)

const defaultSMTPTimeout = 30 * time.Second

// SMTPTransport delivers mail to one SMTP server
type SMTPTransport struct {
	name      string
	server    config.SMTPServerConfig
	fromName  string
	fromEmail string
}

// NewSMTPTransport creates a transport for server
func NewSMTPTransport(name string, server config.SMTPServerConfig, fromName, fromEmail string) *SMTPTransport {
	return &SMTPTransport{
		name:      name,
		server:    applyHostCompat(server),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// NewTransports builds the primary transport and, when enabled, the fallback.
// The fallback inherits the primary credentials when it has none of its own.
func NewTransports(cfg config.SMTPConfig) (Transport, Transport) {
	primary := NewSMTPTransport(TransportPrimary, cfg.SMTPServerConfig, cfg.FromName, cfg.FromEmail)
	if !cfg.Fallback.Enabled || cfg.Fallback.Host == "" {
		return primary, nil
	}

	fb := cfg.Fallback.SMTPServerConfig
	if fb.User == "" && fb.Password == "" {
		fb.User = cfg.User
		fb.Password = cfg.Password
	}
	if fb.Timeout <= 0 {
		fb.Timeout = cfg.Timeout
	}
	return primary, NewSMTPTransport(TransportFallback, fb, cfg.FromName, cfg.FromEmail)
}

// smtp.gmail.com:587 is rewritten to port 465 with implicit TLS.
func applyHostCompat(s config.SMTPServerConfig) config.SMTPServerConfig {
	if strings.EqualFold(strings.TrimSpace(s.Host), "smtp.gmail.com") && s.Port == 587 {
		s.Port = 465
		s.Secure = true
	}
	return s
}

// Name returns the transport name
func (t *SMTPTransport) Name() string {
	return t.name
}

// Server returns the effective server settings
func (t *SMTPTransport) Server() config.SMTPServerConfig {
	return t.server
}

// Send delivers msg over a fresh SMTP connection
func (t *SMTPTransport) Send(ctx context.Context, msg Message) (*model.DeliveryResult, error) {
	m, err := t.buildMessage(msg)
	if err != nil {
		return nil, err
	}

	client, err := t.client()
	if err != nil {
		return nil, err
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return nil, fmt.Errorf("smtp %s:%d: %w", t.server.Host, t.server.Port, err)
	}

	return &model.DeliveryResult{
		MessageID: m.GetMessageID(),
		Response:  fmt.Sprintf("250 accepted by %s:%d", t.server.Host, t.server.Port),
		Transport: t.name,
	}, nil
}

func (t *SMTPTransport) buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(t.fromName, t.fromEmail); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", t.fromEmail, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	for _, path := range msg.Attachments {
		m.AttachFile(path)
	}
	m.SetMessageID()
	m.SetDate()
	return m, nil
}

func (t *SMTPTransport) client() (*mail.Client, error) {
	timeout := t.server.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}

	opts := []mail.Option{
		mail.WithPort(t.server.Port),
		mail.WithTimeout(timeout),
	}
	if t.server.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if t.server.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.server.User),
			mail.WithPassword(t.server.Password),
		)
	}

	client, err := mail.NewClient(t.server.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return client, nil
}
