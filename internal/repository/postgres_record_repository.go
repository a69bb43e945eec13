package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mrmailer/mrmailer/internal/database"
	"github.com/mrmailer/mrmailer/internal/model"
)

const postgresRecordColumns = `id, to_email, subject, body, intent, role, job_desc, extra, message_id, created_at, deleted`

// PostgresRecordRepository stores send records in PostgreSQL
type PostgresRecordRepository struct {
	db *database.Postgres
}

// NewPostgresRecordRepository creates a new PostgresRecordRepository
func NewPostgresRecordRepository(db *database.Postgres) *PostgresRecordRepository {
	return &PostgresRecordRepository{db: db}
}

// LogSend inserts the record under a fresh UUID
func (r *PostgresRecordRepository) LogSend(ctx context.Context, rec *model.SendRecord) (string, error) {
	if err := validateRecord(rec); err != nil {
		return "", err
	}
	db, err := r.db.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to log send: %w", err)
	}

	id := uuid.New().String()
	query := `
		INSERT INTO sent_emails (id, to_email, subject, body, intent, role, job_desc, extra, message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err = db.QueryRowContext(ctx, query,
		id, rec.To, rec.Subject, rec.Body, string(rec.Intent),
		rec.Role, rec.JobDesc, rec.Extra, rec.MessageID,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to log send: %w", err)
	}

	rec.ID = id
	rec.Deleted = false
	return id, nil
}

// RecentFor returns the newest records sent to recipient
func (r *PostgresRecordRepository) RecentFor(ctx context.Context, recipient string) ([]model.SendRecord, error) {
	query := `SELECT ` + postgresRecordColumns + `
		FROM sent_emails
		WHERE to_email = $1 AND NOT deleted
		ORDER BY created_at DESC, seq DESC
		LIMIT $2`
	return r.list(ctx, query, recipient, recentForLimit)
}

// AllRecent returns the newest records across all recipients
func (r *PostgresRecordRepository) AllRecent(ctx context.Context) ([]model.SendRecord, error) {
	query := `SELECT ` + postgresRecordColumns + `
		FROM sent_emails
		WHERE NOT deleted
		ORDER BY created_at DESC, seq DESC
		LIMIT $1`
	return r.list(ctx, query, allRecentLimit)
}

// SoftDelete flags a record as deleted
func (r *PostgresRecordRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}
	db, err := r.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}

	res, err := db.ExecContext(ctx,
		`UPDATE sent_emails SET deleted = TRUE WHERE id = $1 AND NOT deleted`, parsed.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	return affected > 0, nil
}

// HealthCheck verifies the database connection is healthy
func (r *PostgresRecordRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// Close releases the pool
func (r *PostgresRecordRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresRecordRepository) list(ctx context.Context, query string, args ...any) ([]model.SendRecord, error) {
	db, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := make([]model.SendRecord, 0)
	for rows.Next() {
		rec, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

func scanPostgresRecord(rows *sql.Rows) (model.SendRecord, error) {
	var (
		rec    model.SendRecord
		intent string
	)
	err := rows.Scan(&rec.ID, &rec.To, &rec.Subject, &rec.Body, &intent,
		&rec.Role, &rec.JobDesc, &rec.Extra, &rec.MessageID, &rec.CreatedAt, &rec.Deleted)
	if err != nil {
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}
	rec.Intent = model.Intent(intent)
	return rec, nil
}
