// Package store persists agents and distribution history in PostgreSQL.
//
// Store implements agents.Store, core.RosterSelector and
// core.DistributionRecorder over a single pgx pool. Every write that can
// change the roster, and every distribution record, runs under one
// transaction-scoped advisory lock so a plan is never stored against a
// roster that changed while it was being computed.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/leaddist/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// rosterLockKey identifies the advisory lock serialising roster changes
// against distribution records.
const rosterLockKey int64 = 0x6c65_6164_6469_7374

var (
	// ErrDistributionNotFound is returned when no distribution has the given ID.
	ErrDistributionNotFound = errors.New("distribution not found")

	// ErrRosterChanged is returned when the eligible agents differ from the
	// ones a plan was computed for.
	ErrRosterChanged = errors.New("agent roster changed during distribution, please retry")
)

// Default history page sizes, used unless WithPageSize overrides them.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Store is the PostgreSQL implementation of the service's persistence.
type Store struct {
	pool *pgxpool.Pool

	defaultPageSize int
	maxPageSize     int
}

// Option configures a Store.
type Option func(*Store)

// WithPageSize sets the default and maximum history page sizes.
func WithPageSize(def, maxSize int) Option {
	return func(s *Store) {
		if def > 0 {
			s.defaultPageSize = def
		}
		if maxSize >= s.defaultPageSize {
			s.maxPageSize = maxSize
		}
	}
}

// New wraps an open pool.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:            pool,
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates and pings a pool configured from cfg.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded schema. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Ping checks database connectivity for health reporting.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// withRosterLock runs fn in a transaction holding the roster lock.
func (s *Store) withRosterLock(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", rosterLockKey); err != nil {
		return fmt.Errorf("acquire roster lock: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
