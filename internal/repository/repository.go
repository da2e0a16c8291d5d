// Package repository selects and opens the storage backend behind the budget engine.
package repository

import (
	"context"
	"fmt"

	"github.com/dafibh/fortuna/fortuna-budget/internal/config"
	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/dafibh/fortuna/fortuna-budget/internal/repository/postgres"
	"github.com/dafibh/fortuna/fortuna-budget/internal/repository/sqlite"
	"github.com/rs/zerolog/log"
)

// Store bundles the repositories of one backend
type Store struct {
	Ledger  domain.LedgerRepository
	Budgets domain.BudgetTemplateRepository
	Driver  string
	closeFn func()
}

// Close releases the backend's connections
func (s *Store) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// Open connects to the backend named by cfg.StoreDriver
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg)
	case config.StoreDriverSQLite:
		return openSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

// Migrate applies schema migrations for the configured backend without opening a Store
func Migrate(cfg *config.Config) error {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		return postgres.RunMigrations(cfg.DatabaseURL)
	case config.StoreDriverSQLite:
		return sqlite.RunMigrations(cfg.SQLitePath)
	default:
		return fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Connected to PostgreSQL")

	return &Store{
		Ledger:  postgres.NewLedgerRepository(pool),
		Budgets: postgres.NewBudgetTemplateRepository(pool),
		Driver:  config.StoreDriverPostgres,
		closeFn: pool.Close,
	}, nil
}

func openSQLite(cfg *config.Config) (*Store, error) {
	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", cfg.SQLitePath).Msg("Opened SQLite store")

	return &Store{
		Ledger:  sqlite.NewLedgerRepository(db),
		Budgets: sqlite.NewBudgetTemplateRepository(db),
		Driver:  config.StoreDriverSQLite,
		closeFn: func() { db.Close() },
	}, nil
}
