package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mrmailer/mrmailer/internal/model"
)

// Status summarizes what happened to one command
type Status string

const (
	StatusIgnored Status = "ignored"
	StatusSent    Status = "sent"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// StoreError means the email went out but its record could not be saved
type StoreError struct {
	Delivery *model.DeliveryResult
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("email sent but not recorded: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Outcome is the single result of handling one raw command
type Outcome struct {
	Request  *model.Request
	Content  *model.GeneratedContent
	Delivery *model.DeliveryResult
	RecordID string
	Err      error
}

// Status classifies the outcome
func (o Outcome) Status() Status {
	var storeErr *StoreError
	switch {
	case o.Request == nil:
		return StatusIgnored
	case o.Err == nil:
		return StatusSent
	case errors.As(o.Err, &storeErr):
		return StatusPartial
	default:
		return StatusFailed
	}
}

// Preview renders the sent email as a fenced block
func (o Outcome) Preview() string {
	if o.Request == nil || o.Content == nil {
		return ""
	}
	return strings.Join([]string{
		"```\nPREVIEW",
		"To: " + o.Request.To,
		"Subject: " + o.Content.Subject,
		"",
		o.Content.Body,
		"```",
	}, "\n")
}

// UserMessage is the chat reply for the outcome. Ignored commands get none.
func (o Outcome) UserMessage() string {
	switch o.Status() {
	case StatusSent:
		return "✅ **Email sent successfully!**\n\n" + o.Preview()
	case StatusPartial:
		return "⚠️ **Email sent, but it could not be saved to the log.** " +
			"Do not resend it, the recipient already has it.\n\n" + o.Preview()
	case StatusFailed:
		return "❌ **Error:** " + o.Err.Error()
	default:
		return ""
	}
}

type outcomeJSON struct {
	Status    Status         `json:"status"`
	Request   *model.Request `json:"request,omitempty"`
	RecordID  string         `json:"recordId,omitempty"`
	Subject   string         `json:"subject,omitempty"`
	Body      string         `json:"body,omitempty"`
	MessageID string         `json:"messageId,omitempty"`
	Transport string         `json:"transport,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// MarshalJSON renders the outcome for the HTTP API
func (o Outcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{
		Status:   o.Status(),
		Request:  o.Request,
		RecordID: o.RecordID,
	}
	if o.Content != nil {
		out.Subject = o.Content.Subject
		out.Body = o.Content.Body
	}
	if o.Delivery != nil {
		out.MessageID = o.Delivery.MessageID
		out.Transport = o.Delivery.Transport
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}
