// =============================================================================
// Inventario - Product Store
// =============================================================================
//
// SQLite persistence for the companion backend. Three tables:
//   - productos  the product catalogue with current stock
//   - compras    one row per registered purchase line
//   - ventas     one row per registered sale line
//
// Amounts are stored as decimal text so that stock and prices round-trip
// exactly. Aggregations are done in Go with decimal arithmetic.
//
// =============================================================================

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// dateLayout is the format of the fecha column.
const dateLayout = "2006-01-02 15:04:05"

// DeletedProduct names history lines whose product no longer exists.
const DeletedProduct = "Deleted product"

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store is a SQLite-backed product and movement store.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger

	now   func() time.Time
	newID func() string
}

// Open opens (creating if needed) the database at path and runs migrations.
// Use ":memory:" for a throwaway database.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: SQLite has a single writer, and an in-memory database
	// only lives as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{
		db:    db,
		log:   log,
		now:   time.Now,
		newID: shortID,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("database ready", zap.String("path", path))
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS productos (
			id TEXT PRIMARY KEY,
			nombre TEXT NOT NULL DEFAULT '',
			precio_compra TEXT NOT NULL DEFAULT '0',
			precio_venta TEXT NOT NULL DEFAULT '0',
			categoria TEXT NOT NULL DEFAULT '',
			tipo TEXT NOT NULL DEFAULT '',
			unidad TEXT NOT NULL DEFAULT '',
			proveedor TEXT NOT NULL DEFAULT '',
			stock TEXT NOT NULL DEFAULT '0',
			ubicacion TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS compras (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id_producto TEXT NOT NULL,
			fecha TEXT NOT NULL,
			precio TEXT NOT NULL,
			cantidad TEXT NOT NULL,
			total TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ventas (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id_producto TEXT NOT NULL,
			fecha TEXT NOT NULL,
			precio TEXT NOT NULL,
			cantidad TEXT NOT NULL,
			total TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ventas_fecha ON ventas(fecha)`,
	}
	for _, t := range tables {
		if _, err := s.db.Exec(t); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// inTx runs fn inside a transaction, rolling back when it fails.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().Format(dateLayout)
}

// shortID returns the first eight characters of a random UUID.
func shortID() string {
	return uuid.NewString()[:8]
}
