package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_company_store.go -package=mocks edgar-ai/internal/storage CompanyStore

import (
	"context"
	"database/sql"
	"fmt"
)

// CompanyStore defines the interface for company storage operations.
type CompanyStore interface {
	// Upsert inserts a company or updates its name if the ticker exists.
	Upsert(ctx context.Context, ticker, name string) error
	// ListWithCounts returns all companies with their indexed chunk counts,
	// ordered by ticker.
	ListWithCounts(ctx context.Context) ([]*CompanyCount, error)
}

// CompanyRepo provides methods for company operations.
// It implements the CompanyStore interface.
type CompanyRepo struct {
	db *sql.DB
}

// NewCompanyRepo creates a new CompanyRepo.
func NewCompanyRepo(db *sql.DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// Upsert inserts a company or updates its name if the ticker exists.
func (r *CompanyRepo) Upsert(ctx context.Context, ticker, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO companies (ticker, name) VALUES (?, ?)
		 ON CONFLICT (ticker) DO UPDATE SET name = excluded.name`,
		ticker, name,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert company: %w", err)
	}
	return nil
}

// ListWithCounts returns all companies with their indexed chunk counts,
// ordered by ticker. Companies with no chunks are included with a count
// of zero.
func (r *CompanyRepo) ListWithCounts(ctx context.Context) ([]*CompanyCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.ticker, c.name, COUNT(ch.id)
		 FROM companies c
		 LEFT JOIN chunks ch ON ch.ticker = c.ticker
		 GROUP BY c.ticker, c.name
		 ORDER BY c.ticker`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var companies []*CompanyCount
	for rows.Next() {
		var company CompanyCount
		if err := rows.Scan(&company.Ticker, &company.Name, &company.ChunkCount); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, &company)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return companies, nil
}
