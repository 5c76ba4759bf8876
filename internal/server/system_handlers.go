package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/seetoh/stockdash/internal/database"
	"github.com/seetoh/stockdash/internal/marketdata"
)

// SystemHandlers handles health and system monitoring endpoints.
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	portfolioDB *database.DB
	cacheDB     *database.DB
	market      *marketdata.Service
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, portfolioDB, cacheDB *database.DB, market *marketdata.Service) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		startupTime: time.Now(),
		portfolioDB: portfolioDB,
		cacheDB:     cacheDB,
		market:      market,
	}
}

// HandleHealth handles GET /api/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	databases := map[string]string{}
	healthy := true
	for name, db := range map[string]*database.DB{
		h.portfolioDB.Name(): h.portfolioDB,
		h.cacheDB.Name():     h.cacheDB,
	} {
		if err := db.Conn().Ping(); err != nil {
			databases[name] = "unreachable"
			healthy = false
		} else {
			databases[name] = "ok"
		}
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         state,
		"uptime_seconds": int(time.Since(h.startupTime).Seconds()),
		"databases":      databases,
		"cache_entries":  h.market.CacheSize(),
	})
}

// HandleSystemStats handles GET /api/system/stats
func (h *SystemHandlers) HandleSystemStats(w http.ResponseWriter, r *http.Request) {
	cpuAvg, ramPercent := h.getSystemStats()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"cpu_percent":    cpuAvg,
		"ram_percent":    ramPercent,
		"goroutines":     runtime.NumGoroutine(),
		"heap_alloc_mb":  float64(ms.HeapAlloc) / 1024 / 1024,
		"uptime_seconds": int(time.Since(h.startupTime).Seconds()),
	})
}

// getSystemStats returns CPU and RAM usage percentages. The short sampling
// interval keeps the endpoint responsive for dashboard polling.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
