// Package generator drafts email subject and body text with a language model.
package generator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mrmailer/mrmailer/internal/config"
	"github.com/mrmailer/mrmailer/internal/logger"
	"github.com/mrmailer/mrmailer/internal/model"
)

// temperature is fixed for every completion
const temperature float32 = 0.6

const systemPrompt = `You are an assistant that writes concise, high-conversion emails. Use plain text. British/International English. Avoid flowery language. 130-220 words. Include 3-5 bullet points only when helpful. Include portfolio links if provided.`

var subjectLine = regexp.MustCompile(`(?i)^subject\s*:\s*(.+)$`)

// ErrEmptyBody is wrapped by GenerationError when no usable text came back
var ErrEmptyBody = errors.New("generated email body is empty")

// Completer runs one chat completion and returns the assistant text
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is the provider-neutral input of a completion
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32
}

// GenerationError is returned when no email could be drafted
type GenerationError struct {
	Intent model.Intent
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate %s email: %v", e.Intent, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Generator turns a parsed request into email content
type Generator struct {
	completer Completer
	model     string
	profile   config.ProfileConfig
	log       *logger.Logger
}

// New creates a new Generator
func New(completer Completer, cfg config.LLMConfig, profile config.ProfileConfig, log *logger.Logger) *Generator {
	return &Generator{
		completer: completer,
		model:     cfg.Model,
		profile:   profile,
		log:       log.WithComponent("generator"),
	}
}

// Generate drafts the email for req
func (g *Generator) Generate(ctx context.Context, req model.Request) (*model.GeneratedContent, error) {
	g.log.Debug().
		Str("intent", string(req.Intent)).
		Str("to", req.To).
		Str("model", g.model).
		Msg("generating email")

	text, err := g.completer.Complete(ctx, CompletionRequest{
		Model:       g.model,
		System:      systemPrompt,
		User:        userPrompt(req, g.profile),
		Temperature: temperature,
	})
	if err != nil {
		return nil, &GenerationError{Intent: req.Intent, Err: err}
	}

	content := parseContent(req, text)
	if content.Body == "" {
		return nil, &GenerationError{Intent: req.Intent, Err: ErrEmptyBody}
	}

	g.log.Debug().
		Str("subject", content.Subject).
		Int("body_len", len(content.Body)).
		Msg("email generated")
	return content, nil
}

// DefaultSubject is the subject used when the model does not supply one
func DefaultSubject(req model.Request) string {
	if req.Intent == model.IntentPitch {
		return "Web & App Development Services - " + orDefault(req.Role, "Partnership Opportunity")
	}
	return "Application: " + orDefault(req.Role, "Opportunity")
}

// parseContent takes the subject from a leading "Subject:" line when present
func parseContent(req model.Request, text string) *model.GeneratedContent {
	text = strings.TrimSpace(text)
	content := &model.GeneratedContent{Subject: DefaultSubject(req), Body: text}
	if text == "" {
		return content
	}

	first, rest, _ := strings.Cut(text, "\n")
	m := subjectLine.FindStringSubmatch(strings.TrimSpace(first))
	if m == nil {
		return content
	}
	if subject := strings.TrimSpace(m[1]); subject != "" {
		content.Subject = subject
	}
	content.Body = strings.TrimSpace(rest)
	return content
}

func profileBlock(p config.ProfileConfig) string {
	return fmt.Sprintf("Candidate: %s | %s\nLocation: %s\nLinks: %s", p.Name, p.Title, p.Location, p.Links)
}

func userPrompt(req model.Request, p config.ProfileConfig) string {
	lines := []string{
		"INTENT: " + string(req.Intent),
		"RECIPIENT: " + orDefault(req.To, "Unknown"),
		"ROLE: " + orDefault(req.Role, "Not specified"),
		"JOB DESCRIPTION:",
		orDefault(req.JobDesc, "(none provided)"),
	}
	if req.Extra != "" {
		lines = append(lines, "EXTRA: "+req.Extra)
	}

	if req.Intent == model.IntentPitch {
		lines = append(lines, "\n"+pitchInstruction(p))
	} else {
		lines = append(lines, "\nWrite a short, tailored email suitable for sending to the RECIPIENT. "+
			"If intent is 'apply', treat as formal cover-letter style. "+
			"Use the candidate block below. End with a polite CTA.")
	}

	lines = append(lines, "\n"+profileBlock(p))
	return strings.Join(lines, "\n")
}

func pitchInstruction(p config.ProfileConfig) string {
	contact := p.Name + ", " + p.Title
	if p.Phone != "" {
		contact += ", tel " + p.Phone
	}
	return fmt.Sprintf("Write a professional pitch email FROM %[1]s TO the RECIPIENT offering web/app development services. "+
		"This is a cold pitch for business opportunities. "+
		"Use %[1]s's portfolio, GitHub, and LinkedIn as credentials. "+
		"End with %[1]s's contact details: %[2]s. "+
		"Make it sound like %[1]s is reaching out to offer services, not the other way around.", p.Name, contact)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
