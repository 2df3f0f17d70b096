package http

import "net/http"

// handleGetReport builds the report for a budget month, serving from the LRU
// cache when a fresh copy exists.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	budgetID := r.PathValue("id")

	if cached, ok := s.reportCache.Get(budgetID); ok {
		s.logger.DebugContext(r.Context(), "Report cache hit", "budget_id", budgetID)
		s.writeJSON(w, r, http.StatusOK, cached)
		return
	}

	report, err := s.svc.Reports.BuildReport(r.Context(), budgetID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := toReportResponse(report)
	s.reportCache.Set(budgetID, resp)
	s.writeJSON(w, r, http.StatusOK, resp)
}
