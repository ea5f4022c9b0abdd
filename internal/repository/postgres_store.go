package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/lpg-cart/internal/db"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

type postgresStore struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

// NewPostgresStore backs the local store with a shared PostgreSQL database,
// for kiosk and multi-terminal deployments. The schema comes from internal/migrations.
func NewPostgresStore(pool *pgxpool.Pool) port.LocalStore {
	return &postgresStore{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewPostgresStoreWithTx(tx pgx.Tx) port.LocalStore {
	return &postgresStore{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (s *postgresStore) Put(ctx context.Context, collection port.Collection, key string, value []byte) error {
	if err := validateKey(collection, key); err != nil {
		return err
	}

	err := s.q.PutRecord(ctx, db.PutRecordParams{
		Collection: string(collection),
		Key:        key,
		Value:      value,
	})
	if err != nil {
		return fmt.Errorf("q.PutRecord: %w", err)
	}

	return nil
}

func (s *postgresStore) Get(ctx context.Context, collection port.Collection, key string) ([]byte, error) {
	if err := validateKey(collection, key); err != nil {
		return nil, err
	}

	value, err := s.q.GetRecord(ctx, db.GetRecordParams{
		Collection: string(collection),
		Key:        key,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrNotFound
		}
		return nil, fmt.Errorf("q.GetRecord: %w", err)
	}

	return value, nil
}

func (s *postgresStore) Delete(ctx context.Context, collection port.Collection, key string) error {
	if err := validateKey(collection, key); err != nil {
		return err
	}

	if _, err := s.q.DeleteRecord(ctx, db.DeleteRecordParams{
		Collection: string(collection),
		Key:        key,
	}); err != nil {
		return fmt.Errorf("q.DeleteRecord: %w", err)
	}

	return nil
}

func (s *postgresStore) GetAll(ctx context.Context, collection port.Collection) ([]port.Record, error) {
	if !collection.Valid() {
		return nil, unknownCollection(collection)
	}

	rows, err := s.q.ListRecords(ctx, string(collection))
	if err != nil {
		return nil, fmt.Errorf("q.ListRecords: %w", err)
	}

	return mapListRecordsRows(rows), nil
}

func (s *postgresStore) Clear(ctx context.Context, collection port.Collection) error {
	if !collection.Valid() {
		return unknownCollection(collection)
	}

	if err := s.q.ClearCollection(ctx, string(collection)); err != nil {
		return fmt.Errorf("q.ClearCollection: %w", err)
	}

	return nil
}

func (s *postgresStore) ReplaceAll(ctx context.Context, collection port.Collection, records []port.Record) error {
	if !collection.Valid() {
		return unknownCollection(collection)
	}

	_, err := withTx(ctx, s.pool, s.q, func(q *db.Queries) (struct{}, error) {
		if err := q.ClearCollection(ctx, string(collection)); err != nil {
			return struct{}{}, fmt.Errorf("q.ClearCollection: %w", err)
		}

		for _, r := range records {
			if r.Key == "" {
				return struct{}{}, fmt.Errorf("key is empty")
			}

			err := q.PutRecord(ctx, db.PutRecordParams{
				Collection: string(collection),
				Key:        r.Key,
				Value:      r.Value,
			})
			if err != nil {
				return struct{}{}, fmt.Errorf("q.PutRecord[%s]: %w", r.Key, err)
			}
		}

		return struct{}{}, nil
	})

	return err
}

func mapListRecordsRows(rows []db.ListRecordsRow) []port.Record {
	records := make([]port.Record, 0, len(rows))

	for _, row := range rows {
		records = append(records, port.Record{Key: row.Key, Value: row.Value})
	}

	return records
}
