package marketdata

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/seetoh/stockdash/internal/domain"
)

// CacheSchema is the spill table for cache.db.
const CacheSchema = `
CREATE TABLE IF NOT EXISTS market_cache (
	key        TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	data       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_market_cache_expires ON market_cache(expires_at);
`

// SpillStore persists quote and exchange rate entries across restarts so the
// stale fallback has data before the first provider fetch completes. Only the
// short-lived kinds are spilled; fundamentals and history are cheap enough to
// refetch once per session.
type SpillStore struct {
	db    *sql.DB
	clock domain.Clock
	log   zerolog.Logger
}

// NewSpillStore creates a spill store over an opened cache database.
func NewSpillStore(db *sql.DB, clock domain.Clock, log zerolog.Logger) *SpillStore {
	if clock == nil {
		clock = time.Now
	}
	return &SpillStore{
		db:    db,
		clock: clock,
		log:   log.With().Str("service", "cache_spill").Logger(),
	}
}

func spillable(key string) (kind string, ok bool) {
	switch {
	case strings.HasPrefix(key, KindQuote+":"):
		return KindQuote, true
	case strings.HasPrefix(key, KindFx+":"):
		return KindFx, true
	default:
		return "", false
	}
}

// Save writes the cache's current quote and fx entries to disk, replacing
// whatever was spilled before.
func (s *SpillStore) Save(cache *Cache) error {
	entries := cache.snapshot()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin spill transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM market_cache"); err != nil {
		return fmt.Errorf("failed to clear spill table: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO market_cache (key, kind, data, fetched_at, expires_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare spill insert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for key, e := range entries {
		kind, ok := spillable(key)
		if !ok {
			continue
		}
		blob, err := msgpack.Marshal(e.value)
		if err != nil {
			return fmt.Errorf("failed to encode entry %s: %w", key, err)
		}
		if _, err := stmt.Exec(key, kind, blob, e.fetchedAt.Unix(), e.expiresAt.Unix()); err != nil {
			return fmt.Errorf("failed to spill entry %s: %w", key, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit spill: %w", err)
	}

	s.log.Debug().Int("entries", saved).Msg("Spilled cache entries to disk")
	return nil
}

// Restore loads spilled entries into the cache. Expired entries are restored
// as-is; they serve only as stale fallbacks until refreshed.
func (s *SpillStore) Restore(cache *Cache) (int, error) {
	rows, err := s.db.Query("SELECT key, kind, data, fetched_at, expires_at FROM market_cache")
	if err != nil {
		return 0, fmt.Errorf("failed to read spill table: %w", err)
	}
	defer rows.Close()

	restored := 0
	for rows.Next() {
		var (
			key, kind            string
			blob                 []byte
			fetchedAt, expiresAt int64
		)
		if err := rows.Scan(&key, &kind, &blob, &fetchedAt, &expiresAt); err != nil {
			return restored, fmt.Errorf("failed to scan spill row: %w", err)
		}

		var value interface{}
		switch kind {
		case KindQuote:
			var q domain.Quote
			if err := msgpack.Unmarshal(blob, &q); err != nil {
				s.log.Warn().Str("key", key).Err(err).Msg("Skipping undecodable spill entry")
				continue
			}
			value = &q
		case KindFx:
			var fx domain.FxRate
			if err := msgpack.Unmarshal(blob, &fx); err != nil {
				s.log.Warn().Str("key", key).Err(err).Msg("Skipping undecodable spill entry")
				continue
			}
			value = &fx
		default:
			continue
		}

		cache.Put(key, value, time.Unix(fetchedAt, 0).UTC(), time.Unix(expiresAt, 0).UTC())
		restored++
	}
	if err := rows.Err(); err != nil {
		return restored, fmt.Errorf("failed to iterate spill rows: %w", err)
	}

	s.log.Info().Int("entries", restored).Msg("Restored spilled cache entries")
	return restored, nil
}

// Prune removes spilled rows whose entries expired more than maxAge ago.
func (s *SpillStore) Prune(maxAge time.Duration) (int64, error) {
	cutoff := s.clock().Add(-maxAge).Unix()
	res, err := s.db.Exec("DELETE FROM market_cache WHERE expires_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune spill table: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
