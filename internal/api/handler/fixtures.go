package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golexhq/golex-data/internal/api/respond"
	"github.com/golexhq/golex-data/internal/store"
)

const fixtureDateLayout = "2006-01-02"

// ListFixtures serves filtered fixtures ordered by kickoff time.
// @Summary List fixtures
// @Description Returns fixtures matching the given filters, ordered by match date ascending.
// @Tags fixtures
// @Produce json
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param league_id query string false "League ID"
// @Param status query string false "Status short code (NS, FT, ...)"
// @Param limit query int false "Result cap (default 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/fixtures [get]
func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter store.FixtureFilter
	filter.LeagueID = q.Get("league_id")
	filter.Status = q.Get("status")

	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse(fixtureDateLayout, v)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE", "date_from must be YYYY-MM-DD")
			return
		}
		filter.DateFrom = t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse(fixtureDateLayout, v)
		if err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_DATE", "date_to must be YYYY-MM-DD")
			return
		}
		// Inclusive end of day
		filter.DateTo = t.Add(24*time.Hour - time.Nanosecond)
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	fixtures, err := h.store.ListFixtures(r.Context(), filter)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "Failed to list fixtures")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"count":    len(fixtures),
		"fixtures": fixtures,
	})
}
