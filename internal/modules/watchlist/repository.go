// Package watchlist maintains the pool of symbols tracked but not
// necessarily held. Members feed the rebalancer's candidate set.
package watchlist

import (
	"database/sql"
	"fmt"
	"time"
)

// Schema is the watchlist table, stored alongside holdings in portfolio.db.
const Schema = `
CREATE TABLE IF NOT EXISTS watchlist (
	symbol   TEXT PRIMARY KEY,
	company  TEXT NOT NULL DEFAULT '',
	added_at INTEGER NOT NULL
);
`

// Entry is one watched symbol.
type Entry struct {
	Symbol  string    `json:"symbol"`
	Company string    `json:"company"`
	AddedAt time.Time `json:"added_at"`
}

// Repository persists the watchlist.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a watchlist repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// All returns every entry ordered by symbol.
func (r *Repository) All() ([]Entry, error) {
	rows, err := r.db.Query("SELECT symbol, company, added_at FROM watchlist ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var addedAt int64
		if err := rows.Scan(&e.Symbol, &e.Company, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		e.AddedAt = time.Unix(addedAt, 0).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watchlist: %w", err)
	}
	return entries, nil
}

// Contains reports whether symbol is watched.
func (r *Repository) Contains(symbol string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM watchlist WHERE symbol = ?", symbol).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check watchlist for %s: %w", symbol, err)
	}
	return true, nil
}

// Add upserts an entry.
func (r *Repository) Add(e Entry) error {
	if e.Symbol == "" {
		return fmt.Errorf("watchlist symbol is required")
	}
	_, err := r.db.Exec(
		"INSERT OR REPLACE INTO watchlist (symbol, company, added_at) VALUES (?, ?, ?)",
		e.Symbol, e.Company, e.AddedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to add %s to watchlist: %w", e.Symbol, err)
	}
	return nil
}

// Remove deletes an entry. Removing an unknown symbol is not an error.
func (r *Repository) Remove(symbol string) error {
	_, err := r.db.Exec("DELETE FROM watchlist WHERE symbol = ?", symbol)
	if err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", symbol, err)
	}
	return nil
}
