package email

import (
	"context"

	"github.com/mrmailer/mrmailer/internal/model"
)

// Transport delivers a message through one configured mail endpoint.
// This abstraction lets the dispatcher fail over between endpoints
// without knowing how each one talks to the network.
type Transport interface {
	// Name identifies the transport in results and logs
	Name() string
	// Send delivers msg and reports the transport-assigned message id
	Send(ctx context.Context, msg Message) (*model.DeliveryResult, error)
}

// Message represents an email message to be sent.
type Message struct {
	To          string   // recipient email address
	Subject     string   // email subject
	TextBody    string   // plain-text body
	Attachments []string // paths of files to attach
}
