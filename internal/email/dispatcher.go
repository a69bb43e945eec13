package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/mrmailer/mrmailer/internal/config"
	"github.com/mrmailer/mrmailer/internal/logger"
	"github.com/mrmailer/mrmailer/internal/model"
)

// DeliveryError is returned when no transport accepted the message
type DeliveryError struct {
	Recipient string
	Attempts  []string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %q failed (tried %s): %v", e.Recipient, strings.Join(e.Attempts, ", "), e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err means the endpoint could not be reached:
// a refused connection or a network timeout. Context cancellation never is.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Dispatcher sends a message through the primary transport and, after a
// transient failure, through the fallback transport exactly once.
type Dispatcher struct {
	primary  Transport
	fallback Transport
	profile  config.ProfileConfig
	log      *logger.Logger
}

// NewDispatcher creates a new Dispatcher. fallback may be nil.
func NewDispatcher(primary, fallback Transport, profile config.ProfileConfig, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		primary:  primary,
		fallback: fallback,
		profile:  profile,
		log:      log.WithComponent("dispatcher"),
	}
}

// Send delivers one plain-text email
func (d *Dispatcher) Send(ctx context.Context, recipient, subject, body string, attachResume bool) (*model.DeliveryResult, error) {
	msg := Message{
		To:       recipient,
		Subject:  subject,
		TextBody: body,
	}
	if attachResume {
		msg.Attachments = d.resumeAttachment()
	}

	attempts := []Transport{d.primary}
	if d.fallback != nil {
		attempts = append(attempts, d.fallback)
	}

	tried := make([]string, 0, len(attempts))
	for i, t := range attempts {
		tried = append(tried, t.Name())

		result, err := t.Send(ctx, msg)
		if err == nil {
			if result.Transport == "" {
				result.Transport = t.Name()
			}
			d.log.Info().
				Str("to", recipient).
				Str("transport", result.Transport).
				Str("message_id", result.MessageID).
				Msg("email delivered")
			return result, nil
		}

		last := i == len(attempts)-1
		if last || ctx.Err() != nil || !IsTransient(err) {
			return nil, &DeliveryError{Recipient: recipient, Attempts: tried, Err: err}
		}

		d.log.Warn().
			Err(err).
			Str("transport", t.Name()).
			Str("next", attempts[i+1].Name()).
			Msg("transport unreachable, trying fallback")
	}

	// attempts is never empty
	return nil, &DeliveryError{Recipient: recipient, Attempts: tried, Err: errors.New("no transport configured")}
}

func (d *Dispatcher) resumeAttachment() []string {
	if !d.profile.AttachResume || d.profile.ResumePath == "" {
		return nil
	}
	if _, err := os.Stat(d.profile.ResumePath); err != nil {
		d.log.Warn().Err(err).Str("path", d.profile.ResumePath).Msg("resume not found, sending without attachment")
		return nil
	}
	return []string{d.profile.ResumePath}
}
