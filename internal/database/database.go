package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mta/internal/domain"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// dsnParams включает внешние ключи, ожидание блокировки и BEGIN IMMEDIATE для транзакций
const dsnParams = "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"

type DB struct {
	*sql.DB
	path   string
	logger *zerolog.Logger
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?" + dsnParams
	if strings.Contains(path, "?") {
		dsn = path + "&" + dsnParams
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// один writer: проверка доступности и запись идут в одной транзакции
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, path: path, logger: logger}
	if err := db.createTables(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return db, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE COLLATE NOCASE,
            description TEXT NOT NULL DEFAULT '',
            total_quantity INTEGER NOT NULL DEFAULT 0 CHECK (total_quantity >= 0),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS customers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL DEFAULT '',
            birth_date TEXT,
            email TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT '',
            national_id TEXT NOT NULL UNIQUE,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            customer_id INTEGER NOT NULL REFERENCES customers(id),
            start_date TEXT NOT NULL,
            end_date TEXT NOT NULL,
            total_value TEXT NOT NULL DEFAULT '0',
            status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'closed', 'cancelled')),
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            CHECK (end_date >= start_date)
        )`,
		`CREATE TABLE IF NOT EXISTS booking_line_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            booking_id INTEGER NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
            item_id INTEGER NOT NULL REFERENCES items(id),
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            unit_price TEXT NOT NULL DEFAULT '0',
            line_total TEXT NOT NULL DEFAULT '0',
            UNIQUE (booking_id, item_id)
        )`,
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            booking_id INTEGER NOT NULL,
            payload TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_dates ON bookings(start_date, end_date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_customer_id ON bookings(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_line_items_item_id ON booking_line_items(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status, next_retry_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// withTx runs fn inside a single transaction. Code inside fn must use tx only:
// the pool holds one connection, so calls on db would block.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// translateError maps driver errors onto the domain taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", domain.ErrDuplicateIdentifier, sqliteErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", domain.ErrInUse, sqliteErr.Error())
		}
	}
	return err
}

// requireAffected reports ErrNotFound when the statement touched no rows.
func requireAffected(result sql.Result, op string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s %d: %w", op, id, err)
	}
	if rows == 0 {
		return fmt.Errorf("failed to %s %d: %w", op, id, domain.ErrNotFound)
	}
	return nil
}
