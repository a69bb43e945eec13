package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/mrmailer/mrmailer/internal/cache"
	"github.com/mrmailer/mrmailer/internal/command"
	"github.com/mrmailer/mrmailer/internal/generator"
	"github.com/mrmailer/mrmailer/internal/logger"
	"github.com/mrmailer/mrmailer/internal/model"
	"github.com/mrmailer/mrmailer/internal/repository"
)

// persistTimeout bounds the store and receipt writes that follow a delivered email.
// They run detached from the caller's cancellation.
const persistTimeout = 10 * time.Second

// ContentGenerator drafts an email for a request
type ContentGenerator interface {
	Generate(ctx context.Context, req model.Request) (*model.GeneratedContent, error)
}

// MailDispatcher delivers a drafted email
type MailDispatcher interface {
	Send(ctx context.Context, recipient, subject, body string, attachResume bool) (*model.DeliveryResult, error)
}

// MailerService runs a chat command through generation, delivery and logging.
type MailerService struct {
	generator  ContentGenerator
	dispatcher MailDispatcher
	store      repository.RecordStore
	receipts   cache.ReceiptCache
	log        *logger.Logger
}

// NewMailerService creates a new MailerService. receipts may be nil.
func NewMailerService(
	gen ContentGenerator,
	dispatcher MailDispatcher,
	store repository.RecordStore,
	receipts cache.ReceiptCache,
	log *logger.Logger,
) *MailerService {
	return &MailerService{
		generator:  gen,
		dispatcher: dispatcher,
		store:      store,
		receipts:   receipts,
		log:        log.WithComponent("mailer"),
	}
}

// Handle processes one raw command and always returns exactly one outcome.
// Text that is not a command yields an ignored outcome. A panic in any step
// is recovered into the outcome.
func (s *MailerService) Handle(ctx context.Context, raw string) (out Outcome) {
	req := command.Parse(raw)
	if req == nil {
		return Outcome{}
	}

	start := time.Now()
	out.Request = req
	defer func() {
		s.log.Command(string(out.Status()), string(req.Intent), req.To, time.Since(start), out.Err)
	}()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Interface("error", r).
				Str("stack", string(debug.Stack())).
				Msg("panic recovered")
			if out.RecordID != "" {
				return
			}
			err := fmt.Errorf("internal error: %v", r)
			if out.Delivery != nil {
				err = &StoreError{Delivery: out.Delivery, Err: err}
			}
			out.Err = err
		}
	}()

	content, err := s.generator.Generate(ctx, *req)
	if err == nil && (content == nil || strings.TrimSpace(content.Body) == "") {
		err = &generator.GenerationError{Intent: req.Intent, Err: generator.ErrEmptyBody}
	}
	if err != nil {
		out.Err = err
		return out
	}
	out.Content = content

	// The profile decides whether a resume is actually attached
	delivery, err := s.dispatcher.Send(ctx, req.To, content.Subject, content.Body, true)
	if err != nil {
		out.Err = err
		return out
	}
	out.Delivery = delivery

	// Once the email is out the record is written even if the caller cancels.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	rec := model.NewSendRecord(*req, *content, delivery)
	id, err := s.store.LogSend(persistCtx, rec)
	if err != nil {
		out.Err = &StoreError{Delivery: delivery, Err: err}
		return out
	}
	out.RecordID = id

	s.storeReceipt(persistCtx, rec)
	return out
}

func (s *MailerService) storeReceipt(ctx context.Context, rec *model.SendRecord) {
	if s.receipts == nil || rec.MessageID == "" {
		return
	}
	err := s.receipts.StoreReceipt(ctx, model.Receipt{
		MessageID: rec.MessageID,
		RecordID:  rec.ID,
		To:        rec.To,
		SentAt:    rec.CreatedAt,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("message_id", rec.MessageID).Msg("failed to cache receipt")
	}
}

// RecentEmails lists the newest records, optionally for one recipient
func (s *MailerService) RecentEmails(ctx context.Context, recipient string) ([]model.SendRecord, error) {
	if recipient != "" {
		return s.store.RecentFor(ctx, recipient)
	}
	return s.store.AllRecent(ctx)
}

// DeleteEmail soft-deletes a record and reports whether it existed
func (s *MailerService) DeleteEmail(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.SoftDelete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().Str("id", id).Msg("email record deleted")
	}
	return deleted, nil
}

// ErrReceiptsDisabled is returned by Receipt when no receipt cache is configured
var ErrReceiptsDisabled = errors.New("receipt cache is disabled")

// Receipt looks up a delivery receipt by transport message id
func (s *MailerService) Receipt(ctx context.Context, messageID string) (*model.Receipt, error) {
	if s.receipts == nil {
		return nil, ErrReceiptsDisabled
	}
	return s.receipts.Receipt(ctx, messageID)
}

// ReceiptsEnabled reports whether a receipt cache is configured
func (s *MailerService) ReceiptsEnabled() bool {
	return s.receipts != nil
}
