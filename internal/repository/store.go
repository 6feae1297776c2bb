package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/event-enrollment-api/internal/ports"
)

// querier is the subset of *sql.DB and *sql.Tx used by repositories,
// letting the same repository run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the MySQL backed ports.Gateway.
type Store struct {
	db *sql.DB
	q  querier
	tx bool
}

var _ ports.Gateway = (*Store)(nil)

// NewStore wraps an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) Users() ports.UserRepository             { return &UserRepo{q: s.q} }
func (s *Store) Tokens() ports.TokenRepository           { return &TokenRepo{q: s.q} }
func (s *Store) Venues() ports.VenueRepository           { return &VenueRepo{q: s.q} }
func (s *Store) Locations() ports.LocationRepository     { return &LocationRepo{q: s.q} }
func (s *Store) Events() ports.EventRepository           { return &EventRepo{q: s.q} }
func (s *Store) Enrollments() ports.EnrollmentRepository { return &EnrollmentRepo{q: s.q} }

// WithTx begins a transaction, runs fn with a Store bound to it, and
// commits on success. Nested calls reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx ports.Gateway) error) error {
	if s.tx {
		return fn(ctx, s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(ctx, &Store{db: s.db, q: tx, tx: true}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
