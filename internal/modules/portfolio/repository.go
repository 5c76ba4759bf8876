// Package portfolio owns the holdings store and the portfolio aggregator.
package portfolio

import (
	"database/sql"
	"fmt"

	"github.com/seetoh/stockdash/internal/domain"
)

// Schema is the holdings table for portfolio.db.
const Schema = `
CREATE TABLE IF NOT EXISTS holdings (
	symbol   TEXT PRIMARY KEY,
	company  TEXT NOT NULL DEFAULT '',
	shares   REAL NOT NULL,
	avg_cost REAL NOT NULL,
	currency TEXT NOT NULL
);
`

// Repository provides persistence for holdings. All IO errors surface to the
// caller; the store never swallows a failed save.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a holdings repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// All returns every holding ordered by symbol.
func (r *Repository) All() ([]domain.Holding, error) {
	rows, err := r.db.Query(
		"SELECT symbol, company, shares, avg_cost, currency FROM holdings ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []domain.Holding
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.Symbol, &h.Company, &h.Shares, &h.AvgCost, &h.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}
	return holdings, nil
}

// Get returns one holding, or nil when the symbol is not held.
func (r *Repository) Get(symbol string) (*domain.Holding, error) {
	var h domain.Holding
	err := r.db.QueryRow(
		"SELECT symbol, company, shares, avg_cost, currency FROM holdings WHERE symbol = ?",
		symbol).Scan(&h.Symbol, &h.Company, &h.Shares, &h.AvgCost, &h.Currency)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding %s: %w", symbol, err)
	}
	return &h, nil
}

// Save upserts a holding keyed by symbol.
func (r *Repository) Save(h domain.Holding) error {
	if h.Symbol == "" {
		return fmt.Errorf("holding symbol is required")
	}
	if h.Shares <= 0 {
		return fmt.Errorf("holding %s must have positive shares", h.Symbol)
	}

	_, err := r.db.Exec(
		"INSERT OR REPLACE INTO holdings (symbol, company, shares, avg_cost, currency) VALUES (?, ?, ?, ?, ?)",
		h.Symbol, h.Company, h.Shares, h.AvgCost, string(h.Currency))
	if err != nil {
		return fmt.Errorf("failed to save holding %s: %w", h.Symbol, err)
	}
	return nil
}

// Remove deletes a holding. Removing an unknown symbol is not an error.
func (r *Repository) Remove(symbol string) error {
	_, err := r.db.Exec("DELETE FROM holdings WHERE symbol = ?", symbol)
	if err != nil {
		return fmt.Errorf("failed to remove holding %s: %w", symbol, err)
	}
	return nil
}

// ReplaceAll swaps the entire holdings list in one transaction.
func (r *Repository) ReplaceAll(holdings []domain.Holding) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin holdings transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM holdings"); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}
	for _, h := range holdings {
		if _, err := tx.Exec(
			"INSERT INTO holdings (symbol, company, shares, avg_cost, currency) VALUES (?, ?, ?, ?, ?)",
			h.Symbol, h.Company, h.Shares, h.AvgCost, string(h.Currency)); err != nil {
			return fmt.Errorf("failed to insert holding %s: %w", h.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit holdings: %w", err)
	}
	return nil
}
