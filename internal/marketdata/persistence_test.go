package marketdata

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/seetoh/stockdash/internal/domain"
)

func setupSpillDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(CacheSchema)
	require.NoError(t, err)
	return db
}

func TestSpillRoundTrip(t *testing.T) {
	clock := newFakeClock()
	db := setupSpillDB(t)
	store := NewSpillStore(db, clock.Now, zerolog.Nop())

	cache := NewCache(clock.Now)
	quote := &domain.Quote{Symbol: "AAPL", Price: 190.5, AsOf: clock.Now()}
	fx := &domain.FxRate{Pair: "USDSGD", Rate: 1.35, AsOf: clock.Now()}
	cache.Put(Key(KindQuote, "AAPL"), quote, clock.Now(), clock.Now().Add(5*time.Minute))
	cache.Put(Key(KindFx, "USDSGD"), fx, clock.Now(), clock.Now().Add(5*time.Minute))
	// Fundamentals and history are session data and never spill.
	cache.Put(Key(KindFundamentals, "AAPL"), &domain.FundamentalsSnapshot{Symbol: "AAPL"}, clock.Now(), clock.Now().Add(time.Hour))

	require.NoError(t, store.Save(cache))

	restored := NewCache(clock.Now)
	n, err := store.Restore(restored)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, restored.Len())

	res, err := restored.GetOrFetch(Key(KindQuote, "AAPL"), 5*time.Minute, func() (interface{}, error) {
		t.Fatal("fresh restored entry must not refetch")
		return nil, nil
	})
	require.NoError(t, err)
	got := res.Value.(*domain.Quote)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 190.5, got.Price)
}

func TestSpillRestoredExpiredEntryServesAsStaleFallback(t *testing.T) {
	clock := newFakeClock()
	db := setupSpillDB(t)
	store := NewSpillStore(db, clock.Now, zerolog.Nop())

	cache := NewCache(clock.Now)
	cache.Put(Key(KindFx, "USDSGD"), &domain.FxRate{Pair: "USDSGD", Rate: 1.35}, clock.Now(), clock.Now().Add(time.Minute))
	require.NoError(t, store.Save(cache))

	clock.Advance(2 * time.Hour)

	restored := NewCache(clock.Now)
	_, err := store.Restore(restored)
	require.NoError(t, err)

	res, err := restored.GetOrFetch(Key(KindFx, "USDSGD"), time.Minute, func() (interface{}, error) {
		return nil, assert.AnError
	})
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Equal(t, 1.35, res.Value.(*domain.FxRate).Rate)
}

func TestSpillPrune(t *testing.T) {
	clock := newFakeClock()
	db := setupSpillDB(t)
	store := NewSpillStore(db, clock.Now, zerolog.Nop())

	cache := NewCache(clock.Now)
	cache.Put(Key(KindQuote, "OLD"), &domain.Quote{Symbol: "OLD"}, clock.Now().Add(-72*time.Hour), clock.Now().Add(-71*time.Hour))
	cache.Put(Key(KindQuote, "NEW"), &domain.Quote{Symbol: "NEW"}, clock.Now(), clock.Now().Add(5*time.Minute))
	require.NoError(t, store.Save(cache))

	pruned, err := store.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	restored := NewCache(clock.Now)
	n, err := store.Restore(restored)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
