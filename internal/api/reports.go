package api

import "net/http"

func (s *HTTPServer) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	summary, err := s.services.Reports.Summary(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
