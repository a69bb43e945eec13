// Package bot adapts chat messages to the mailer pipeline. It is independent
// of any concrete chat client: callers deliver Message values and a Replier.
package bot

import (
	"context"
	"fmt"
	"io"

	"github.com/mrmailer/mrmailer/internal/config"
	"github.com/mrmailer/mrmailer/internal/logger"
	"github.com/mrmailer/mrmailer/internal/service"
)

// Message is an incoming chat message
type Message struct {
	ChannelID string
	Author    string
	AuthorBot bool
	Content   string
}

// Replier posts a reply to the message being handled
type Replier interface {
	Reply(ctx context.Context, text string) error
}

// CommandRunner runs one raw command through the pipeline
type CommandRunner interface {
	Handle(ctx context.Context, raw string) service.Outcome
}

// Handler filters chat messages and answers commands
type Handler struct {
	runner    CommandRunner
	channelID string
	log       *logger.Logger
}

// NewHandler creates a new Handler
func NewHandler(runner CommandRunner, cfg config.ChatConfig, log *logger.Logger) *Handler {
	return &Handler{
		runner:    runner,
		channelID: cfg.ChannelID,
		log:       log.WithComponent("bot"),
	}
}

// HandleMessage processes msg and replies when it was a command.
// Bot authors, other channels and non-command text are ignored.
func (h *Handler) HandleMessage(ctx context.Context, msg Message, r Replier) (service.Outcome, error) {
	if msg.AuthorBot {
		return service.Outcome{}, nil
	}
	if h.channelID != "" && msg.ChannelID != h.channelID {
		h.log.Debug().Str("channel_id", msg.ChannelID).Msg("message outside configured channel")
		return service.Outcome{}, nil
	}

	out := h.runner.Handle(ctx, msg.Content)
	if out.Status() == service.StatusIgnored {
		return out, nil
	}

	h.log.Info().
		Str("author", msg.Author).
		Str("status", string(out.Status())).
		Msg("command handled")

	if err := r.Reply(ctx, out.UserMessage()); err != nil {
		return out, fmt.Errorf("failed to send reply: %w", err)
	}
	return out, nil
}

// WriterReplier writes replies to an io.Writer
type WriterReplier struct {
	W io.Writer
}

// Reply writes text followed by a newline
func (w WriterReplier) Reply(_ context.Context, text string) error {
	_, err := fmt.Fprintln(w.W, text)
	return err
}
