// Package postgres persists thumbnails to a PostgreSQL table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bft-labs/thumbship/internal/domain"
)

// ErrNotOpen is returned by BulkInsert before Open or after Close.
var ErrNotOpen = errors.New("postgres sink is not open")

// IsURI reports whether uri is a PostgreSQL connection string.
func IsURI(uri string) bool {
	return strings.HasPrefix(uri, "postgres://") || strings.HasPrefix(uri, "postgresql://")
}

// Sink implements ports.PersistenceSink on one table with columns
// id (primary key), idx and thumbnail. Each record is its own statement
// in a pgx batch, so a conflicting id skips only that row.
type Sink struct {
	dsn   string
	table string

	mu   sync.RWMutex
	pool *pgxpool.Pool
}

// NewSink creates a sink for table, which may be schema-qualified.
func NewSink(dsn, table string) *Sink {
	return &Sink{dsn: dsn, table: table}
}

func (s *Sink) ident() string {
	return pgx.Identifier(strings.Split(s.table, ".")).Sanitize()
}

func (s *Sink) createSQL() string {
	return "CREATE TABLE IF NOT EXISTS " + s.ident() +
		" (id TEXT PRIMARY KEY, idx BIGINT NOT NULL, thumbnail BYTEA NOT NULL," +
		" created_at TIMESTAMPTZ NOT NULL DEFAULT now())"
}

func (s *Sink) insertSQL() string {
	return "INSERT INTO " + s.ident() +
		" (id, idx, thumbnail) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING"
}

// Open creates the pool and the table if it does not exist yet.
func (s *Sink) Open(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, s.dsn)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, s.createSQL()); err != nil {
		pool.Close()
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	s.mu.Lock()
	s.pool = pool
	s.mu.Unlock()
	return nil
}

// BulkInsert inserts records in one round trip. Rows whose id already
// exists are reported as duplicates; any other error fails the call.
func (s *Sink) BulkInsert(ctx context.Context, records []domain.PersistableImage) (domain.InsertResult, error) {
	s.mu.RLock()
	pool := s.pool
	s.mu.RUnlock()
	if pool == nil {
		return domain.InsertResult{}, ErrNotOpen
	}
	if len(records) == 0 {
		return domain.InsertResult{}, nil
	}

	query := s.insertSQL()
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(query, r.ID, int64(r.Index), r.Thumbnail)
	}

	br := pool.SendBatch(ctx, batch)
	affected := make([]int64, 0, len(records))
	for range records {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return domain.InsertResult{}, fmt.Errorf("insert into %s: %w", s.table, err)
		}
		affected = append(affected, tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return domain.InsertResult{}, fmt.Errorf("insert into %s: %w", s.table, err)
	}
	return resultFromAffected(records, affected), nil
}

// Close closes the pool.
func (s *Sink) Close(context.Context) error {
	s.mu.Lock()
	pool := s.pool
	s.pool = nil
	s.mu.Unlock()

	if pool != nil {
		pool.Close()
	}
	return nil
}

// resultFromAffected treats a statement that touched no row as a conflict.
func resultFromAffected(records []domain.PersistableImage, affected []int64) domain.InsertResult {
	var result domain.InsertResult
	for i, n := range affected {
		if n > 0 {
			result.Inserted++
			continue
		}
		result.Failures = append(result.Failures, domain.RecordFailure{
			ID:    records[i].ID,
			Index: records[i].Index,
			Err:   fmt.Errorf("%w: id %q already exists", domain.ErrDuplicateRecord, records[i].ID),
		})
	}
	return result
}
