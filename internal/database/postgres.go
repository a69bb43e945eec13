package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/mrmailer/mrmailer/internal/config"
)

// Postgres is a lazily connected PostgreSQL pool
type Postgres struct {
	cfg  config.DatabaseConfig
	open func(ctx context.Context) (*sql.DB, error)

	mu sync.Mutex
	db *sql.DB
}

// NewPostgres creates a handle that connects on first use
func NewPostgres(cfg config.DatabaseConfig) *Postgres {
	p := &Postgres{cfg: cfg}
	p.open = p.connect
	return p
}

// ErrPoolClosed is returned by a handle built from an existing pool once that pool is closed
var ErrPoolClosed = errors.New("database pool is closed")

// NewPostgresWithDB wraps an already opened pool. It cannot reconnect after Close.
func NewPostgresWithDB(db *sql.DB) *Postgres {
	return &Postgres{
		db: db,
		open: func(context.Context) (*sql.DB, error) {
			return nil, ErrPoolClosed
		},
	}
}

func (p *Postgres) connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("postgres", p.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(p.cfg.MaxConnections)
	db.SetMaxIdleConns(max(p.cfg.MaxConnections/4, 1))
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if p.cfg.AutoMigrate {
		if err := MigrateUp(p.cfg); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// Conn returns the pool, connecting first if needed. A failed attempt
// leaves the handle unconnected so the next call tries again.
func (p *Postgres) Conn(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db, nil
	}

	db, err := p.open(ctx)
	if err != nil {
		return nil, err
	}
	p.db = db
	return db, nil
}

// HealthCheck verifies the database connection is healthy
func (p *Postgres) HealthCheck(ctx context.Context) error {
	db, err := p.Conn(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close releases the pool. Handles from NewPostgres reconnect on next use.
func (p *Postgres) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
