package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/mrmailer/mrmailer/internal/database"
	"github.com/mrmailer/mrmailer/internal/model"
)

const sqliteRecordColumns = `id, to_email, subject, body, intent, role, job_desc, extra, message_id, created_at, deleted`

// SQLiteRecordRepository stores send records in a local SQLite file
type SQLiteRecordRepository struct {
	db *database.SQLite
}

// NewSQLiteRecordRepository creates a new SQLiteRecordRepository
func NewSQLiteRecordRepository(db *database.SQLite) *SQLiteRecordRepository {
	return &SQLiteRecordRepository{db: db}
}

// LogSend inserts the record and fills in its id and creation time
func (r *SQLiteRecordRepository) LogSend(ctx context.Context, rec *model.SendRecord) (string, error) {
	if err := validateRecord(rec); err != nil {
		return "", err
	}
	db, err := r.db.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to log send: %w", err)
	}

	query := `
		INSERT INTO sent_emails (to_email, subject, body, intent, role, job_desc, extra, message_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at
	`
	var (
		id        int64
		createdAt string
	)
	err = db.QueryRowContext(ctx, query,
		rec.To, rec.Subject, rec.Body, string(rec.Intent),
		rec.Role, rec.JobDesc, rec.Extra, rec.MessageID,
	).Scan(&id, &createdAt)
	if err != nil {
		return "", fmt.Errorf("failed to log send: %w", err)
	}

	rec.ID = strconv.FormatInt(id, 10)
	rec.CreatedAt, err = time.Parse(database.SQLiteTimeLayout, createdAt)
	if err != nil {
		return "", fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	rec.Deleted = false
	return rec.ID, nil
}

// RecentFor returns the newest records sent to recipient
func (r *SQLiteRecordRepository) RecentFor(ctx context.Context, recipient string) ([]model.SendRecord, error) {
	query := `SELECT ` + sqliteRecordColumns + `
		FROM sent_emails
		WHERE to_email = ? AND deleted = 0
		ORDER BY created_at DESC, id DESC
		LIMIT ?`
	return r.list(ctx, query, recipient, recentForLimit)
}

// AllRecent returns the newest records across all recipients
func (r *SQLiteRecordRepository) AllRecent(ctx context.Context) ([]model.SendRecord, error) {
	query := `SELECT ` + sqliteRecordColumns + `
		FROM sent_emails
		WHERE deleted = 0
		ORDER BY created_at DESC, id DESC
		LIMIT ?`
	return r.list(ctx, query, allRecentLimit)
}

// SoftDelete flags a record as deleted
func (r *SQLiteRecordRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return false, nil
	}
	db, err := r.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}

	res, err := db.ExecContext(ctx, `UPDATE sent_emails SET deleted = 1 WHERE id = ? AND deleted = 0`, n)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	return affected > 0, nil
}

// HealthCheck verifies the database is reachable
func (r *SQLiteRecordRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// Close releases the database
func (r *SQLiteRecordRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRecordRepository) list(ctx context.Context, query string, args ...any) ([]model.SendRecord, error) {
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
		rec, err := scanSQLiteRecord(rows)
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

func scanSQLiteRecord(rows *sql.Rows) (model.SendRecord, error) {
	var (
		rec       model.SendRecord
		id        int64
		intent    string
		createdAt string
		deleted   int
	)
	err := rows.Scan(&id, &rec.To, &rec.Subject, &rec.Body, &intent,
		&rec.Role, &rec.JobDesc, &rec.Extra, &rec.MessageID, &createdAt, &deleted)
	if err != nil {
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.ID = strconv.FormatInt(id, 10)
	rec.Intent = model.Intent(intent)
	rec.Deleted = deleted != 0
	rec.CreatedAt, err = time.Parse(database.SQLiteTimeLayout, createdAt)
	if err != nil {
		return rec, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	return rec, nil
}
