package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrmailer/mrmailer/internal/config"
	"github.com/mrmailer/mrmailer/internal/database"
	"github.com/mrmailer/mrmailer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *SQLiteRecordRepository {
	t.Helper()
	db := database.NewSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "mail.sqlite")})
	r := NewSQLiteRecordRepository(db)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func sampleRecord(to, subject string) *model.SendRecord {
	return &model.SendRecord{
		To:        to,
		Subject:   subject,
		Body:      "Hello there",
		Intent:    model.IntentApply,
		Role:      "Backend Engineer",
		JobDesc:   "Go services",
		MessageID: "<" + subject + "@mail.example.com>",
	}
}

func TestSQLite_LogSendRoundTrip(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	rec := sampleRecord("hr@acme.io", "Application: Backend Engineer")
	rec.Extra = "Mention: relocation"
	id, err := r.LogSend(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "1", id)
	assert.Equal(t, id, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := r.RecentFor(ctx, "hr@acme.io")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *rec, got[0])
}

func TestSQLite_RecentForIsNewestFirstAndCapped(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := r.LogSend(ctx, sampleRecord("a@x.io", fmt.Sprintf("s%d", i)))
		require.NoError(t, err)
	}
	_, err := r.LogSend(ctx, sampleRecord("b@x.io", "other"))
	require.NoError(t, err)

	got, err := r.RecentFor(ctx, "a@x.io")
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, rec := range got {
		assert.Equal(t, fmt.Sprintf("s%d", 6-i), rec.Subject)
		assert.Equal(t, "a@x.io", rec.To)
	}

	none, err := r.RecentFor(ctx, "nobody@x.io")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite_AllRecentIsCappedAtTwenty(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	for i := 0; i < 22; i++ {
		_, err := r.LogSend(ctx, sampleRecord(fmt.Sprintf("r%d@x.io", i%3), fmt.Sprintf("s%02d", i)))
		require.NoError(t, err)
	}

	got, err := r.AllRecent(ctx)
	require.NoError(t, err)
	require.Len(t, got, 20)
	assert.Equal(t, "s21", got[0].Subject)
	assert.Equal(t, "s02", got[19].Subject)
}

func TestSQLite_SoftDelete(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	id, err := r.LogSend(ctx, sampleRecord("a@x.io", "first"))
	require.NoError(t, err)
	_, err = r.LogSend(ctx, sampleRecord("a@x.io", "second"))
	require.NoError(t, err)

	changed, err := r.SoftDelete(ctx, id)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = r.SoftDelete(ctx, id)
	require.NoError(t, err)
	assert.False(t, changed, "second delete must not change anything")

	for _, bad := range []string{"999", "abc", "", "1.5"} {
		changed, err = r.SoftDelete(ctx, bad)
		require.NoError(t, err, bad)
		assert.False(t, changed, bad)
	}

	recent, err := r.RecentFor(ctx, "a@x.io")
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "second", recent[0].Subject)

	all, err := r.AllRecent(ctx)
	require.NoError(t, err)
	for _, rec := range all {
		assert.NotEqual(t, id, rec.ID)
		assert.False(t, rec.Deleted)
	}
}

func TestSQLite_RejectsInvalidRecord(t *testing.T) {
	r := newSQLiteRepo(t)

	_, err := r.LogSend(context.Background(), &model.SendRecord{To: "a@x.io", Intent: "spam"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = r.LogSend(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSQLite_UnreachableStoreFailsEachCall(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	r := NewSQLiteRecordRepository(database.NewSQLite(config.SQLiteConfig{Path: filepath.Join(blocker, "db.sqlite")}))
	ctx := context.Background()

	_, err := r.LogSend(ctx, sampleRecord("a@x.io", "s"))
	assert.Error(t, err)
	_, err = r.AllRecent(ctx)
	assert.Error(t, err)
	_, err = r.SoftDelete(ctx, "1")
	assert.Error(t, err)
	assert.Error(t, r.HealthCheck(ctx))
}

func TestNew_SelectsBackend(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{
		Backend: config.BackendSQLite,
		SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "x.sqlite")},
	}}
	store, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRecordRepository{}, store)

	cfg.Store.Backend = config.BackendPostgres
	store, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &PostgresRecordRepository{}, store)

	cfg.Store.Backend = "mongodb"
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}
