package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/nikolayk812/lpg-cart/internal/port"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS local_records (
	collection TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (collection, key)
)`

var _ port.LocalStore = (*SQLiteStore)(nil)

// SQLiteStore keeps the local mirror in an on-device SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteStore opens dsn (for example "file:cart.db?_pragma=busy_timeout(5000)")
// and creates the schema if it is missing.
func OpenSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("sqlite dsn is empty")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, errors.Join(fmt.Errorf("create schema: %w", err), db.Close())
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Put(ctx context.Context, collection port.Collection, key string, value []byte) error {
	if err := validateKey(collection, key); err != nil {
		return err
	}

	if err := putSQLite(ctx, s.db, collection, key, value, s.now()); err != nil {
		return fmt.Errorf("putSQLite: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection port.Collection, key string) ([]byte, error) {
	if err := validateKey(collection, key); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM local_records WHERE collection = ? AND key = ?`,
		string(collection), key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, port.ErrNotFound
		}
		return nil, fmt.Errorf("db.QueryRow: %w", err)
	}

	return value, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, collection port.Collection, key string) error {
	if err := validateKey(collection, key); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM local_records WHERE collection = ? AND key = ?`,
		string(collection), key,
	); err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	return nil
}

func (s *SQLiteStore) GetAll(ctx context.Context, collection port.Collection) ([]port.Record, error) {
	if !collection.Valid() {
		return nil, unknownCollection(collection)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM local_records WHERE collection = ? ORDER BY key`,
		string(collection),
	)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	records := []port.Record{}
	for rows.Next() {
		var r port.Record
		if err := rows.Scan(&r.Key, &r.Value); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return records, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, collection port.Collection) error {
	if !collection.Valid() {
		return unknownCollection(collection)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM local_records WHERE collection = ?`, string(collection),
	); err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	return nil
}

func (s *SQLiteStore) ReplaceAll(ctx context.Context, collection port.Collection, records []port.Record) (txErr error) {
	if !collection.Valid() {
		return unknownCollection(collection)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTx: %w", err)
	}

	defer func() {
		if txErr != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM local_records WHERE collection = ?`, string(collection),
	); err != nil {
		return fmt.Errorf("tx.Exec: %w", err)
	}

	now := s.now()
	for _, r := range records {
		if err := validateKey(collection, r.Key); err != nil {
			return err
		}
		if err := putSQLite(ctx, tx, collection, r.Key, r.Value, now); err != nil {
			return fmt.Errorf("putSQLite[%s]: %w", r.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}

	return nil
}

type sqliteExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putSQLite(ctx context.Context, db sqliteExecer, collection port.Collection, key string, value []byte, now time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO local_records (collection, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(collection), key, value, now.UTC().Format(time.RFC3339Nano),
	)
	return err
}
