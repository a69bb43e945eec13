package model

import "time"

// Intent is the purpose of a generated email
type Intent string

const (
	IntentPitch Intent = "pitch"
	IntentApply Intent = "apply"
)

// Valid reports whether the intent is one of the known values
func (i Intent) Valid() bool {
	return i == IntentPitch || i == IntentApply
}

// Request is a parsed chat command
type Request struct {
	Intent  Intent `json:"intent"`
	To      string `json:"to"`
	Role    string `json:"role"`
	JobDesc string `json:"jobDesc"`
	Extra   string `json:"extra"`
}

// GeneratedContent is the drafted email produced for a Request
type GeneratedContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DeliveryResult is what a mail transport reports after accepting a message
type DeliveryResult struct {
	MessageID string `json:"messageId"`
	Response  string `json:"response"`
	Transport string `json:"transport"`
}

// SendRecord is one persisted successful send.
// ID is an opaque token whose format depends on the storage backend.
type SendRecord struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Intent    Intent    `json:"intent"`
	Role      string    `json:"role"`
	JobDesc   string    `json:"jobDesc"`
	Extra     string    `json:"extra"`
	MessageID string    `json:"messageId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Deleted   bool      `json:"deleted"`
}

// NewSendRecord builds the record to persist for a delivered request
func NewSendRecord(req Request, content GeneratedContent, delivery *DeliveryResult) *SendRecord {
	rec := &SendRecord{
		To:      req.To,
		Subject: content.Subject,
		Body:    content.Body,
		Intent:  req.Intent,
		Role:    req.Role,
		JobDesc: req.JobDesc,
		Extra:   req.Extra,
	}
	if delivery != nil {
		rec.MessageID = delivery.MessageID
	}
	return rec
}

// Receipt maps a transport message id back to the stored record
type Receipt struct {
	MessageID string    `json:"messageId"`
	RecordID  string    `json:"recordId"`
	To        string    `json:"to"`
	SentAt    time.Time `json:"sentAt"`
}
