// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/groblegark/confpub/internal/model"
	"github.com/groblegark/confpub/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// LockOwner on the root store is a no-op: advisory transaction locks only
// hold for the duration of a transaction, so serialization is meaningful
// only through RunInTransaction.
func (s *PostgresStore) LockOwner(ctx context.Context, key model.OwnerKey) error {
	return nil
}

func (s *PostgresStore) CreateRecord(ctx context.Context, rec *model.ConfigRecord) error {
	return queryCreateRecord(ctx, s.db, rec)
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, rec *model.ConfigRecord) error {
	return queryUpdateRecord(ctx, s.db, rec)
}

func (s *PostgresStore) GetRecord(ctx context.Context, key model.OwnerKey, status model.Status) (*model.ConfigRecord, error) {
	return queryGetRecord(ctx, s.db, key, status)
}

func (s *PostgresStore) ListRecords(ctx context.Context, productID string) ([]*model.ConfigRecord, error) {
	return queryListRecords(ctx, s.db, productID)
}

func (s *PostgresStore) ListAllRecords(ctx context.Context) ([]*model.ConfigRecord, error) {
	return queryListAllRecords(ctx, s.db)
}

func (s *PostgresStore) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	return queryAppendHistory(ctx, s.db, entry)
}

func (s *PostgresStore) GetHistoryEntry(ctx context.Context, id string) (*model.HistoryEntry, error) {
	return queryGetHistoryEntry(ctx, s.db, id)
}

func (s *PostgresStore) ListHistory(ctx context.Context, filter model.HistoryFilter) ([]*model.HistoryEntry, int, error) {
	return queryListHistory(ctx, s.db, filter)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) LockOwner(ctx context.Context, key model.OwnerKey) error {
	return queryLockOwner(ctx, s.tx, key)
}

func (s *txStore) CreateRecord(ctx context.Context, rec *model.ConfigRecord) error {
	return queryCreateRecord(ctx, s.tx, rec)
}

func (s *txStore) UpdateRecord(ctx context.Context, rec *model.ConfigRecord) error {
	return queryUpdateRecord(ctx, s.tx, rec)
}

func (s *txStore) GetRecord(ctx context.Context, key model.OwnerKey, status model.Status) (*model.ConfigRecord, error) {
	return queryGetRecord(ctx, s.tx, key, status)
}

func (s *txStore) ListRecords(ctx context.Context, productID string) ([]*model.ConfigRecord, error) {
	return queryListRecords(ctx, s.tx, productID)
}

func (s *txStore) ListAllRecords(ctx context.Context) ([]*model.ConfigRecord, error) {
	return queryListAllRecords(ctx, s.tx)
}

func (s *txStore) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	return queryAppendHistory(ctx, s.tx, entry)
}

func (s *txStore) GetHistoryEntry(ctx context.Context, id string) (*model.HistoryEntry, error) {
	return queryGetHistoryEntry(ctx, s.tx, id)
}

func (s *txStore) ListHistory(ctx context.Context, filter model.HistoryFilter) ([]*model.HistoryEntry, int, error) {
	return queryListHistory(ctx, s.tx, filter)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
