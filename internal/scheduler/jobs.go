package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
	"github.com/seetoh/stockdash/internal/marketdata"
	"github.com/seetoh/stockdash/internal/modules/portfolio"
)

// FxSyncJob refreshes the exchange rate for every currency seen in the
// holdings so conversions hit a warm cache.
type FxSyncJob struct {
	market   *marketdata.Service
	holdings *portfolio.Repository
	log      zerolog.Logger
}

// NewFxSyncJob creates an FX sync job
func NewFxSyncJob(market *marketdata.Service, holdings *portfolio.Repository, log zerolog.Logger) *FxSyncJob {
	return &FxSyncJob{
		market:   market,
		holdings: holdings,
		log:      log.With().Str("job", "fx_sync").Logger(),
	}
}

// Name returns the job name
func (j *FxSyncJob) Name() string { return "fx_sync" }

// Run refreshes one rate per non-reporting currency in the portfolio.
func (j *FxSyncJob) Run() error {
	holdings, err := j.holdings.All()
	if err != nil {
		return fmt.Errorf("fx sync could not load holdings: %w", err)
	}

	currencies := make(map[domain.Currency]bool)
	for _, h := range holdings {
		if h.Currency != domain.ReportingCurrency {
			currencies[h.Currency] = true
		}
	}

	for cur := range currencies {
		pair := string(cur) + string(domain.ReportingCurrency)
		if _, stale, err := j.market.FxRate(pair); err != nil {
			j.log.Warn().Str("pair", pair).Err(err).Msg("FX refresh failed")
		} else if stale {
			j.log.Warn().Str("pair", pair).Msg("FX refresh returned stale rate")
		}
	}
	return nil
}

// CacheJanitorJob evicts cache entries whose stale-fallback window has
// passed and prunes the on-disk spill to match.
type CacheJanitorJob struct {
	market *marketdata.Service
	spill  *marketdata.SpillStore
	maxAge time.Duration
	log    zerolog.Logger
}

// NewCacheJanitorJob creates a cache janitor job
func NewCacheJanitorJob(market *marketdata.Service, spill *marketdata.SpillStore, maxAge time.Duration, log zerolog.Logger) *CacheJanitorJob {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &CacheJanitorJob{
		market: market,
		spill:  spill,
		maxAge: maxAge,
		log:    log.With().Str("job", "cache_janitor").Logger(),
	}
}

// Name returns the job name
func (j *CacheJanitorJob) Name() string { return "cache_janitor" }

// Run evicts long-expired entries.
func (j *CacheJanitorJob) Run() error {
	removed := j.market.EvictExpired(j.maxAge)
	if j.spill != nil {
		pruned, err := j.spill.Prune(j.maxAge)
		if err != nil {
			return err
		}
		j.log.Debug().Int("evicted", removed).Int64("pruned", pruned).Msg("Cache janitor pass done")
	}
	return nil
}

// BackupJob runs the reliability backup service.
type BackupJob struct {
	backup interface{ Backup() error }
	log    zerolog.Logger
}

// NewBackupJob creates a backup job
func NewBackupJob(backup interface{ Backup() error }, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		backup: backup,
		log:    log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name
func (j *BackupJob) Name() string { return "backup" }

// Run performs one backup cycle.
func (j *BackupJob) Run() error {
	return j.backup.Backup()
}
