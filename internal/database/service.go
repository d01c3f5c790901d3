package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.AidStore.
var _ store.AidStore = (*Service)(nil)

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- Create users table
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		display_number INTEGER NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'member',
		verified BOOLEAN NOT NULL DEFAULT 0,
		total_earnings TEXT NOT NULL DEFAULT '0',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);

	-- Create packages catalog table
	CREATE TABLE IF NOT EXISTS packages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		amount TEXT NOT NULL,
		return_percent TEXT NOT NULL,
		duration_days INTEGER NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Create help activities table. A row is owned by exactly one side.
	CREATE TABLE IF NOT EXISTS help_activities (
		id TEXT PRIMARY KEY,
		giver_id TEXT REFERENCES users(id),
		receiver_id TEXT REFERENCES users(id),
		package_id TEXT NOT NULL REFERENCES packages(id),
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		admin_approved BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		maturity_date TIMESTAMP NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CHECK ((giver_id IS NULL) != (receiver_id IS NULL))
	);

	-- At most one active activity per role per user, enforced at the write path
	CREATE UNIQUE INDEX IF NOT EXISTS idx_activities_active_giver
		ON help_activities(giver_id) WHERE status = 'active' AND giver_id IS NOT NULL;
	CREATE UNIQUE INDEX IF NOT EXISTS idx_activities_active_receiver
		ON help_activities(receiver_id) WHERE status = 'active' AND receiver_id IS NOT NULL;

	CREATE INDEX IF NOT EXISTS idx_activities_status ON help_activities(status);
	CREATE INDEX IF NOT EXISTS idx_activities_created_at ON help_activities(created_at);

	-- Create payment matches table
	CREATE TABLE IF NOT EXISTS payment_matches (
		id TEXT PRIMARY KEY,
		giver_activity_id TEXT NOT NULL REFERENCES help_activities(id),
		receiver_activity_id TEXT NOT NULL REFERENCES help_activities(id),
		package_id TEXT NOT NULL REFERENCES packages(id),
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- An activity may be linked to at most one non-terminal match
	CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_open_giver
		ON payment_matches(giver_activity_id) WHERE status != 'completed';
	CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_open_receiver
		ON payment_matches(receiver_activity_id) WHERE status != 'completed';

	CREATE INDEX IF NOT EXISTS idx_matches_status ON payment_matches(status);

	-- Create payment accounts table (user receiving details)
	CREATE TABLE IF NOT EXISTS payment_accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id),
		account_name TEXT NOT NULL,
		account_number TEXT NOT NULL,
		provider TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// isUniqueConstraintErr reports whether err is a sqlite unique constraint
// violation, which backs the one-active-activity-per-role invariant.
func isUniqueConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
