package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks edgar-ai/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// Upsert inserts or replaces chunks in a single transaction.
	// Chunk IDs are deterministic, so re-ingesting a filing overwrites
	// its previous rows.
	Upsert(ctx context.Context, chunks []*ChunkRecord) error
	// GetByID gets a chunk by its point ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ChunkRecord, error)
	// GetByIDs returns the chunks for the given point IDs, keyed by ID.
	// IDs with no row are absent from the map, not an error.
	GetByIDs(ctx context.Context, ids []string) (map[string]*ChunkRecord, error)
	// ListIDsByFiling returns the point IDs indexed for one filing,
	// ordered by section and position.
	ListIDsByFiling(ctx context.Context, ticker, filingType, filingDate string) ([]string, error)
	// DeleteByIDs removes chunks by point ID.
	DeleteByIDs(ctx context.Context, ids []string) error
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// Upsert inserts or replaces chunks in a single transaction.
func (r *ChunkRepo) Upsert(ctx context.Context, chunks []*ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, chunk_id, ticker, filing_type, filing_date, section, position, text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 chunk_id = excluded.chunk_id, ticker = excluded.ticker,
		 filing_type = excluded.filing_type, filing_date = excluded.filing_date,
		 section = excluded.section, position = excluded.position, text = excluded.text`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, chunk := range chunks {
		_, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.ChunkID, chunk.Ticker, chunk.FilingType,
			chunk.FilingDate, chunk.Section, chunk.Position, chunk.Text,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", chunk.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk upsert: %w", err)
	}
	return nil
}

// GetByID gets a chunk by its point ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*ChunkRecord, error) {
	var chunk ChunkRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT id, chunk_id, ticker, filing_type, filing_date, section, position, text
		 FROM chunks WHERE id = ?`,
		id,
	).Scan(&chunk.ID, &chunk.ChunkID, &chunk.Ticker, &chunk.FilingType,
		&chunk.FilingDate, &chunk.Section, &chunk.Position, &chunk.Text)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}

	return &chunk, nil
}

// GetByIDs returns the chunks for the given point IDs, keyed by ID.
// Missing IDs are simply absent from the result.
func (r *ChunkRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*ChunkRecord, error) {
	result := make(map[string]*ChunkRecord, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, chunk_id, ticker, filing_type, filing_date, section, position, text
			 FROM chunks WHERE id IN (%s)`, placeholders),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var chunk ChunkRecord
		if err := rows.Scan(&chunk.ID, &chunk.ChunkID, &chunk.Ticker, &chunk.FilingType,
			&chunk.FilingDate, &chunk.Section, &chunk.Position, &chunk.Text); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		result[chunk.ID] = &chunk
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}

// ListIDsByFiling returns the point IDs indexed for one filing, ordered by
// section and position. Returns an empty slice if no chunks exist.
// Used to find stale points when a filing is re-ingested.
func (r *ChunkRepo) ListIDsByFiling(ctx context.Context, ticker, filingType, filingDate string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM chunks
		 WHERE ticker = ? AND filing_type = ? AND filing_date = ?
		 ORDER BY section, position`,
		ticker, filingType, filingDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// DeleteByIDs removes chunks by point ID.
func (r *ChunkRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM chunks WHERE id IN (%s)", placeholders),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}
