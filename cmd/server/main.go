// Command server runs the investment dashboard API.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/seetoh/stockdash/internal/clients/yahoo"
	"github.com/seetoh/stockdash/internal/config"
	"github.com/seetoh/stockdash/internal/database"
	"github.com/seetoh/stockdash/internal/marketdata"
	"github.com/seetoh/stockdash/internal/modules/currency"
	"github.com/seetoh/stockdash/internal/modules/historical"
	"github.com/seetoh/stockdash/internal/modules/portfolio"
	"github.com/seetoh/stockdash/internal/modules/rebalancing"
	"github.com/seetoh/stockdash/internal/modules/scoring"
	"github.com/seetoh/stockdash/internal/modules/watchlist"
	"github.com/seetoh/stockdash/internal/reliability"
	"github.com/seetoh/stockdash/internal/scheduler"
	"github.com/seetoh/stockdash/internal/server"
	"github.com/seetoh/stockdash/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info"})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logger.SetGlobalLogger(log)
	log.Info().Str("data_dir", cfg.DataDir).Int("port", cfg.Port).Msg("Starting stockdash")

	// Databases: durable holdings/watchlist plus the cache spill.
	portfolioDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "portfolio.db"),
		Profile: database.ProfileStandard,
		Name:    "portfolio",
		Schema:  portfolio.Schema + watchlist.Schema,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open portfolio database")
	}
	defer portfolioDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
		Schema:  marketdata.CacheSchema,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	// Market data: Yahoo provider behind the TTL cache, spilled to disk
	// across restarts.
	provider := yahoo.NewClient(cfg.ProviderTimeout, log)
	cache := marketdata.NewCache(time.Now)
	spill := marketdata.NewSpillStore(cacheDB.Conn(), time.Now, log)
	if _, err := spill.Restore(cache); err != nil {
		log.Warn().Err(err).Msg("Could not restore spilled cache entries")
	}

	market := marketdata.NewService(provider, cache, marketdata.TTLs{
		Quote:        cfg.QuoteTTL,
		Fx:           cfg.FxTTL,
		Fundamentals: cfg.FundamentalsTTL,
		History:      cfg.HistoryTTL,
	}, log)

	// Analytics modules.
	currencySvc := currency.NewService(market, log)
	scoringSvc := scoring.NewService(market, time.Now, log)
	holdingsRepo := portfolio.NewRepository(portfolioDB.Conn())
	portfolioSvc := portfolio.NewService(holdingsRepo, market, currencySvc, scoringSvc, time.Now, log)
	watchlistSvc := watchlist.NewService(watchlist.NewRepository(portfolioDB.Conn()), market, scoringSvc, time.Now, log)
	rebalancingSvc := rebalancing.NewService(portfolioSvc, watchlistSvc, time.Now, log)
	historicalSvc := historical.NewService(holdingsRepo, market, currencySvc, cfg.BenchmarkSymbol, time.Now, log)

	// Maintenance jobs. Analytics stay on-demand.
	sched := scheduler.New(log)
	if err := sched.AddJob("@hourly", scheduler.NewFxSyncJob(market, holdingsRepo, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register fx sync job")
	}
	if err := sched.AddJob("@every 10m", scheduler.NewCacheJanitorJob(market, spill, 24*time.Hour, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache janitor job")
	}

	backupSvc, err := reliability.NewBackupService(cfg.Backup, portfolioDB.Path(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize backup service")
	}
	if backupSvc != nil {
		if err := sched.AddJob("@daily", scheduler.NewBackupJob(backupSvc, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	} else {
		log.Info().Msg("Backups not configured, skipping backup job")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:         log,
		Config:      cfg,
		PortfolioDB: portfolioDB,
		CacheDB:     cacheDB,
		Market:      market,
		Currency:    currencySvc,
		Scoring:     scoringSvc,
		Portfolio:   portfolioSvc,
		Watchlist:   watchlistSvc,
		Rebalancing: rebalancingSvc,
		Historical:  historicalSvc,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server stopped unexpectedly")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	sched.Stop()

	if err := spill.Save(cache); err != nil {
		log.Warn().Err(err).Msg("Could not spill cache entries to disk")
	}

	log.Info().Msg("Shutdown complete")
}
