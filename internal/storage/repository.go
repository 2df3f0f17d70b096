// Package storage is the persistent ledger store: a single sqlite database
// holding projects, accounts, categories, transactions, budgets and
// forecasts. All multi-row mutations go through InTx so partial writes are
// never observable.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/log"
)

type Repository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

func Open(dbPath string, logger *log.Logger) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// sqlite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY between concurrent mutations on the same pair.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &Repository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(log.ComponentStorage),
	}

	if err := repo.ensureNilAccount(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed nil account: %w", err)
	}

	return repo, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Queries returns the query set bound to the main connection.
func (r *Repository) Queries() *Queries {
	return r.queries
}

// InTx runs fn inside a database transaction. Any error rolls the whole
// transaction back, keeping primary/counterpart pairs and cascades atomic.
func (r *Repository) InTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.ErrorContext(ctx, "Rollback failed", log.FieldError, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ensureNilAccount seeds the singleton sentinel account representing the
// outside world. Safe to call on every startup.
func (r *Repository) ensureNilAccount(ctx context.Context) error {
	existing, err := r.queries.GetNilAccount(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	acct := core.Account{
		ID:   uuid.NewString(),
		Name: "nil",
		Type: core.AccountNil,
	}
	if err := r.queries.InsertAccount(ctx, acct); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "Seeded nil account", log.FieldAccount, acct.ID)
	return nil
}
