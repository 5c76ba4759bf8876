package portfolio

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/seetoh/stockdash/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(Schema)
	require.NoError(t, err)

	return db
}

func TestRepositorySaveAndAll(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Save(domain.Holding{
		Symbol: "D05.SI", Company: "DBS Group", Shares: 200, AvgCost: 32.5, Currency: domain.SGD,
	}))
	require.NoError(t, repo.Save(domain.Holding{
		Symbol: "AAPL", Company: "Apple", Shares: 50, AvgCost: 150, Currency: domain.USD,
	}))

	holdings, err := repo.All()
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "AAPL", holdings[0].Symbol, "holdings are ordered by symbol")
	assert.Equal(t, "D05.SI", holdings[1].Symbol)
}

func TestRepositorySaveUpserts(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Save(domain.Holding{Symbol: "AAPL", Shares: 50, AvgCost: 150, Currency: domain.USD}))
	require.NoError(t, repo.Save(domain.Holding{Symbol: "AAPL", Shares: 75, AvgCost: 160, Currency: domain.USD}))

	h, err := repo.Get("AAPL")
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 75.0, h.Shares)
	assert.Equal(t, 160.0, h.AvgCost)
}

func TestRepositorySaveValidates(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	assert.Error(t, repo.Save(domain.Holding{Shares: 10, Currency: domain.USD}))
	assert.Error(t, repo.Save(domain.Holding{Symbol: "AAPL", Shares: 0, Currency: domain.USD}))
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	h, err := repo.Get("NOPE")
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestRepositoryRemove(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Save(domain.Holding{Symbol: "AAPL", Shares: 10, AvgCost: 100, Currency: domain.USD}))
	require.NoError(t, repo.Remove("AAPL"))
	require.NoError(t, repo.Remove("AAPL"), "removing an unknown symbol is not an error")

	holdings, err := repo.All()
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestRepositoryReplaceAll(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Save(domain.Holding{Symbol: "OLD", Shares: 1, AvgCost: 1, Currency: domain.SGD}))
	require.NoError(t, repo.ReplaceAll([]domain.Holding{
		{Symbol: "AAPL", Shares: 10, AvgCost: 100, Currency: domain.USD},
		{Symbol: "0700.HK", Shares: 300, AvgCost: 350, Currency: domain.HKD},
	}))

	holdings, err := repo.All()
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "0700.HK", holdings[0].Symbol)
}
