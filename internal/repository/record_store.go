package repository

import (
	"context"
	"fmt"

	"github.com/mrmailer/mrmailer/internal/config"
	"github.com/mrmailer/mrmailer/internal/database"
	"github.com/mrmailer/mrmailer/internal/model"
)

const (
	recentForLimit = 5
	allRecentLimit = 20
)

// RecordStore persists successful sends. Every backend returns records
// newest first and never returns soft-deleted ones.
type RecordStore interface {
	// LogSend stores the record and returns its backend-assigned id
	LogSend(ctx context.Context, rec *model.SendRecord) (string, error)
	// RecentFor returns up to 5 records sent to recipient
	RecentFor(ctx context.Context, recipient string) ([]model.SendRecord, error)
	// AllRecent returns up to 20 records across all recipients
	AllRecent(ctx context.Context) ([]model.SendRecord, error)
	// SoftDelete marks the record deleted and reports whether anything changed.
	// Unknown and malformed ids report false without an error.
	SoftDelete(ctx context.Context, id string) (bool, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// New returns the record store for the configured backend
func New(cfg *config.Config) (RecordStore, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		return NewSQLiteRecordRepository(database.NewSQLite(cfg.Store.SQLite)), nil
	case config.BackendPostgres:
		return NewPostgresRecordRepository(database.NewPostgres(cfg.Database)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Store.Backend)
	}
}

func validateRecord(rec *model.SendRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidInput)
	}
	if !rec.Intent.Valid() {
		return fmt.Errorf("%w: intent %q", ErrInvalidInput, rec.Intent)
	}
	return nil
}
