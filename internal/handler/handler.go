package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mrmailer/mrmailer/internal/logger"
	"github.com/mrmailer/mrmailer/internal/model"
	"github.com/mrmailer/mrmailer/internal/service"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// Mailer is the pipeline and record access used by the HTTP API
type Mailer interface {
	Handle(ctx context.Context, raw string) service.Outcome
	RecentEmails(ctx context.Context, recipient string) ([]model.SendRecord, error)
	DeleteEmail(ctx context.Context, id string) (bool, error)
	Receipt(ctx context.Context, messageID string) (*model.Receipt, error)
}

// HealthChecker is a dependency reported by the health endpoint
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds all HTTP handlers
type Handler struct {
	mailer Mailer
	checks map[string]HealthChecker
	log    *logger.Logger
}

// New creates a new Handler instance
func New(mailer Mailer, checks map[string]HealthChecker, log *logger.Logger) *Handler {
	return &Handler{
		mailer: mailer,
		checks: checks,
		log:    log.WithComponent("handler"),
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}

func readJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
