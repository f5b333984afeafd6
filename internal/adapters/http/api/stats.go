package api

import (
	"maps"
	"net/http"
	"time"
)

// StatsProvider reports service counters.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler serves the provider counters plus the handler uptime.
type StatsHandler struct {
	provider StatsProvider
	started  time.Time
}

// NewStatsHandler creates a stats handler whose uptime starts now.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider, started: time.Now()}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats := maps.Clone(h.provider.GetStats())
	if stats == nil {
		stats = map[string]any{}
	}
	stats["uptime"] = time.Since(h.started).Round(time.Second).String()
	writeJSON(w, http.StatusOK, stats)
}
