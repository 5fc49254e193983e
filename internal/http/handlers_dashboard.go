package http

import "net/http"

// handleDashboardStats computes the aggregation fresh on every request; no
// caching sits between a committed mutation and the next stats read.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboard.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
