package http

import (
	"log/slog"
	"net/http"

	"budgetd/internal/core"
	"budgetd/internal/log"
)

func (s *Server) handleGetBudgetMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := queryYearMonth(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	key := reportCacheKey(year, month)
	if report, found := s.reportCache.Get(key); found {
		slog.DebugContext(r.Context(), "Budget report cache hit",
			log.FieldYear, year, log.FieldMonth, month)
		respondJSON(w, http.StatusOK, toBudgetMonthResponse(report))
		return
	}

	report, err := s.budget.GetMonth(r.Context(), year, month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.reportCache.Set(key, report)
	respondJSON(w, http.StatusOK, toBudgetMonthResponse(report))
}

func (s *Server) handleSetAllocation(w http.ResponseWriter, r *http.Request) {
	var cmd core.AllocationCommand
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}
	allocation, err := s.budget.SetAllocation(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateReports()
	respondJSON(w, http.StatusOK, toAllocationResponse(allocation))
}
