// Package store persists batch results. It consumes the BatchResult as an
// opaque value; the engine has no knowledge of the schema here.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prospect-dedup/internal/pipeline"
)

// Store writes batch runs and their representatives to Postgres
type Store struct {
	db *sql.DB
}

// New creates a store over an open database connection
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the tables if they do not exist
func (s *Store) Init() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS batch_run (
			batch_id            TEXT PRIMARY KEY,
			source_file         TEXT NOT NULL,
			address_field       TEXT NOT NULL,
			total_rows          INTEGER NOT NULL,
			parsed_rows         INTEGER NOT NULL,
			parse_failed_rows   INTEGER NOT NULL,
			unique_after_dedup  INTEGER NOT NULL,
			duplicates_absorbed INTEGER NOT NULL,
			started_at          TIMESTAMPTZ NOT NULL,
			completed_at        TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS batch_representative (
			id           SERIAL PRIMARY KEY,
			batch_id     TEXT NOT NULL REFERENCES batch_run(batch_id),
			row_index    INTEGER NOT NULL,
			fingerprint  TEXT NOT NULL,
			house_number TEXT,
			street       TEXT,
			unit         TEXT,
			city         TEXT,
			state        TEXT,
			zip          TEXT,
			confidence   TEXT NOT NULL,
			group_size   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS batch_failed_row (
			id        SERIAL PRIMARY KEY,
			batch_id  TEXT NOT NULL REFERENCES batch_run(batch_id),
			row_index INTEGER NOT NULL,
			reason    TEXT NOT NULL,
			raw       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_representative_batch ON batch_representative(batch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_failed_batch ON batch_failed_row(batch_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// SaveBatch stores one batch result inside a transaction
func (s *Store) SaveBatch(ctx context.Context, sourceFile string, result *pipeline.BatchResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batch_run (
			batch_id, source_file, address_field, total_rows, parsed_rows,
			parse_failed_rows, unique_after_dedup, duplicates_absorbed,
			started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		result.BatchID, sourceFile, result.AddressField,
		result.Counts.Total, result.Counts.Parsed, result.Counts.ParseFailed,
		result.Counts.UniqueAfterDedup, result.Counts.DuplicatesAbsorbed,
		result.StartedAt, result.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert batch run: %w", err)
	}

	repStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO batch_representative (
			batch_id, row_index, fingerprint, house_number, street, unit,
			city, state, zip, confidence, group_size
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return fmt.Errorf("failed to prepare representative insert: %w", err)
	}
	defer repStmt.Close()

	for _, rep := range result.Representatives {
		a := rep.Address
		_, err = repStmt.ExecContext(ctx,
			result.BatchID, rep.Record.Index, rep.Fingerprint,
			a.HouseNumber, a.Street, a.Unit, a.City, a.State, a.Zip,
			rep.Confidence, rep.GroupSize)
		if err != nil {
			return fmt.Errorf("failed to insert representative for row %d: %w", rep.Record.Index, err)
		}
	}

	failStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO batch_failed_row (batch_id, row_index, reason, raw)
		VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("failed to prepare failed-row insert: %w", err)
	}
	defer failStmt.Close()

	for _, f := range result.Failed {
		if _, err = failStmt.ExecContext(ctx, result.BatchID, f.Index, f.Reason, f.Raw); err != nil {
			return fmt.Errorf("failed to insert failed row %d: %w", f.Index, err)
		}
	}

	return tx.Commit()
}

// BatchSummary is one row of the batch history listing
type BatchSummary struct {
	BatchID            string `json:"batch_id"`
	SourceFile         string `json:"source_file"`
	Total              int    `json:"total"`
	UniqueAfterDedup   int    `json:"unique_after_dedup"`
	DuplicatesAbsorbed int    `json:"duplicates_absorbed"`
	ParseFailed        int    `json:"parse_failed"`
}

// ListBatches returns recent batch runs, newest first
func (s *Store) ListBatches(ctx context.Context, limit int) ([]BatchSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT batch_id, source_file, total_rows, unique_after_dedup,
		       duplicates_absorbed, parse_failed_rows
		FROM batch_run
		ORDER BY completed_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var batches []BatchSummary
	for rows.Next() {
		var b BatchSummary
		if err := rows.Scan(&b.BatchID, &b.SourceFile, &b.Total,
			&b.UniqueAfterDedup, &b.DuplicatesAbsorbed, &b.ParseFailed); err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
