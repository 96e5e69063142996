package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/torgpult/catalog-service/internal/types"
)

// ImportLog provides access to the append-only import audit trail.
type ImportLog struct {
	pool *pgxpool.Pool
}

// NewImportLog creates an ImportLog on the given pool.
func NewImportLog(pool *pgxpool.Pool) *ImportLog {
	return &ImportLog{pool: pool}
}

// LatestByFilename returns the most recent record for a filename, or nil
// if the file has never been seen.
func (l *ImportLog) LatestByFilename(ctx context.Context, filename string) (*ImportFileRecord, error) {
	row := l.pool.QueryRow(ctx, `
		SELECT id, filename, file_hash, last_modified, products_count, status, error_message, processed_at
		FROM import_file_log
		WHERE filename = $1
		ORDER BY processed_at DESC
		LIMIT 1
	`, filename)

	var rec ImportFileRecord
	err := row.Scan(&rec.ID, &rec.Filename, &rec.FileHash, &rec.LastModified,
		&rec.ProductsCount, &rec.Status, &rec.ErrorMessage, &rec.ProcessedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query import log for %s: %w", filename, err)
	}
	return &rec, nil
}

// RecordSuccess appends a success record for a processed file.
func (l *ImportLog) RecordSuccess(ctx context.Context, filename, fileHash string, lastModified time.Time, productsCount int) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO import_file_log (filename, file_hash, last_modified, products_count, status)
		VALUES ($1, $2, $3, $4, $5)
	`, filename, fileHash, lastModified, productsCount, types.RunStatusSuccess)
	if err != nil {
		return fmt.Errorf("failed to record import success for %s: %w", filename, err)
	}
	return nil
}

// RecordFailure appends an error record. fileHash may be empty when the
// file could not even be read; lastModified falls back to now.
func (l *ImportLog) RecordFailure(ctx context.Context, filename, fileHash string, lastModified time.Time, errMsg string) error {
	if lastModified.IsZero() {
		lastModified = time.Now()
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO import_file_log (filename, file_hash, last_modified, products_count, status, error_message)
		VALUES ($1, $2, $3, 0, $4, $5)
	`, filename, fileHash, lastModified, types.RunStatusError, errMsg)
	if err != nil {
		return fmt.Errorf("failed to record import failure for %s: %w", filename, err)
	}
	return nil
}

// ListRecent returns the newest audit records, newest first.
func (l *ImportLog) ListRecent(ctx context.Context, limit int) ([]ImportFileRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.pool.Query(ctx, `
		SELECT id, filename, file_hash, last_modified, products_count, status, error_message, processed_at
		FROM import_file_log
		ORDER BY processed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import log: %w", err)
	}
	defer rows.Close()

	var records []ImportFileRecord
	for rows.Next() {
		var rec ImportFileRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.FileHash, &rec.LastModified,
			&rec.ProductsCount, &rec.Status, &rec.ErrorMessage, &rec.ProcessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import log row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
