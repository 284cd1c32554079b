// Package sqlite persists evaluation dataset samples so collected PR data
// survives regeneration of the JSONL exports.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lmchoi/nitpicker/internal/domain"
)

// Store implements dataset persistence using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a store at the given path. Use ":memory:" for tests.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		name TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		sample_id INTEGER PRIMARY KEY AUTOINCREMENT,
		dataset TEXT NOT NULL,
		input TEXT NOT NULL,
		target TEXT NOT NULL,
		metadata TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (dataset) REFERENCES datasets(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_samples_dataset ON samples(dataset);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveSamples records the samples under the named dataset, creating the
// dataset row on first use.
func (s *Store) SaveSamples(ctx context.Context, dataset string, samples []domain.Sample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (name, created_at) VALUES (?, ?)
		 ON CONFLICT(name) DO NOTHING`, dataset, now); err != nil {
		return fmt.Errorf("upsert dataset: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (dataset, input, target, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sample := range samples {
		target, err := json.Marshal(sample.Target)
		if err != nil {
			return fmt.Errorf("marshal target: %w", err)
		}
		metadata, err := json.Marshal(sample.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, dataset, sample.Input, string(target), string(metadata), now); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}

	return tx.Commit()
}

// ListSamples returns all samples recorded under the named dataset, oldest
// first.
func (s *Store) ListSamples(ctx context.Context, dataset string) ([]domain.Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT input, target, metadata FROM samples WHERE dataset = ? ORDER BY sample_id`, dataset)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.Sample
	for rows.Next() {
		var input, target, metadata string
		if err := rows.Scan(&input, &target, &metadata); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}

		sample := domain.Sample{Input: input}
		if err := json.Unmarshal([]byte(target), &sample.Target); err != nil {
			return nil, fmt.Errorf("unmarshal target: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &sample.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// CountSamples returns the number of samples recorded per dataset.
func (s *Store) CountSamples(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dataset, COUNT(*) FROM samples GROUP BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var dataset string
		var count int
		if err := rows.Scan(&dataset, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[dataset] = count
	}
	return counts, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
