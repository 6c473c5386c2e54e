package api

import (
	"net/http"

	"github.com/okian/vidmatch/internal/domain/types"
)

// StatsProvider defines the interface for getting run statistics.
type StatsProvider interface {
	GetStats() types.Summary
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

type statsResponse struct {
	types.Summary
	Remaining      int     `json:"remaining"`
	MatchRate      float64 `json:"match_rate"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	s := h.statsProvider.GetStats()
	writeJSON(w, http.StatusOK, statsResponse{
		Summary:        s,
		Remaining:      s.Remaining(),
		MatchRate:      s.MatchRate(),
		ElapsedSeconds: s.Elapsed.Seconds(),
	})
}
