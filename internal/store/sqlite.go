package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Ashfaaq98/customer-issues/internal/metrics"
)

// Store is the SQLite-backed case store.
type Store struct {
	db      *sql.DB
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.Named("store")
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore opens (creating when needed) the database at dbPath and applies
// migrations. ":memory:" is accepted for tests.
func NewStore(dbPath string, opts ...Option) (*Store, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open(sqliteDriver, dataSourceName(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite has a single writer, and an in-memory database
	// exists per connection.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	s.logger.Debug("store ready", zap.String("path", dbPath), zap.String("driver", sqliteDriver))
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS status_options (
			name TEXT PRIMARY KEY,
			color_code TEXT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS cases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_name TEXT NOT NULL,
			subscriber_number TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
			status TEXT NOT NULL DEFAULT 'New',
			problem_description TEXT NOT NULL DEFAULT '',
			actions_taken TEXT NOT NULL DEFAULT '',
			last_meter_reading TEXT NOT NULL DEFAULT '',
			last_reading_date TEXT NOT NULL DEFAULT '',
			debt_amount TEXT NOT NULL DEFAULT '',
			created_date TEXT NOT NULL,
			modified_date TEXT NOT NULL,
			created_by INTEGER REFERENCES employees(id) ON DELETE SET NULL,
			modified_by INTEGER REFERENCES employees(id) ON DELETE SET NULL,
			solved_by INTEGER REFERENCES employees(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attachments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			case_id INTEGER NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
			file_name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			upload_date TEXT NOT NULL,
			uploaded_by INTEGER REFERENCES employees(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS correspondences (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			case_id INTEGER NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
			sequence_number INTEGER NOT NULL,
			yearly_sequence_number INTEGER NOT NULL,
			sender TEXT NOT NULL DEFAULT '',
			message_content TEXT NOT NULL DEFAULT '',
			created_date TEXT NOT NULL,
			sent_date TEXT NOT NULL DEFAULT '',
			created_by INTEGER REFERENCES employees(id) ON DELETE SET NULL
		)`,
		// Counters outlive the rows they numbered so numbers are never reused.
		`CREATE TABLE IF NOT EXISTS correspondence_counters (
			scope TEXT PRIMARY KEY,
			last_value INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			case_id INTEGER NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
			action_type TEXT NOT NULL,
			action_description TEXT NOT NULL DEFAULT '',
			performed_by INTEGER REFERENCES employees(id) ON DELETE SET NULL,
			timestamp TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_cases_created_date ON cases(created_date)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_customer_name ON cases(customer_name)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_subscriber_number ON cases(subscriber_number)`,
		`CREATE INDEX IF NOT EXISTS idx_attachments_case_id ON attachments(case_id)`,
		`CREATE INDEX IF NOT EXISTS idx_correspondences_case_id ON correspondences(case_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_case_id ON audit_log(case_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	for i, opt := range DefaultStatusOptions {
		if _, err := s.db.Exec(
			`INSERT OR IGNORE INTO status_options (name, color_code, sort_order) VALUES (?, ?, ?)`,
			opt.Name, opt.ColorCode, i,
		); err != nil {
			return fmt.Errorf("failed to seed status options: %w", err)
		}
	}
	return nil
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin tx", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit tx", err)
	}
	return nil
}

func (s *Store) observe(op string, start time.Time, err error) {
	s.metrics.ObserveStore(op, start, err)
	if err != nil {
		s.logger.Debug("store operation failed", zap.String("op", op), zap.Error(err))
	}
}

func (s *Store) timestamp() string {
	return formatTime(s.now())
}

// nullID maps the zero id to SQL NULL.
func nullID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

func idFrom(n sql.NullInt64) int64 {
	if n.Valid {
		return n.Int64
	}
	return 0
}
