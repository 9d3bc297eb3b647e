package http

import (
	"net/http"
	"strconv"

	"smartspend/internal/analytics"
	"smartspend/internal/core"
)

const defaultPieRadius = 100.0

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.analytics.Snapshot())
}

func (s *Server) handlePie(w http.ResponseWriter, r *http.Request) {
	radius := defaultPieRadius
	if v := r.URL.Query().Get("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 || parsed > 10000 {
			writeValidationError(w, "invalid radius", map[string]string{"radius": "must be a positive number up to 10000"})
			return
		}
		radius = parsed
	}

	snap := s.analytics.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"month":    snap.CurrentMonth,
		"radius":   radius,
		"segments": analytics.PieSegments(snap.CategoryTotals, radius),
	})
}

type categoryInfo struct {
	Name  core.Category `json:"name"`
	Emoji string        `json:"emoji"`
	Color string        `json:"color"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	all := core.AllCategories()
	out := make([]categoryInfo, 0, len(all))
	for _, c := range all {
		out = append(out, categoryInfo{Name: c, Emoji: c.Emoji(), Color: c.Color()})
	}
	writeJSON(w, http.StatusOK, out)
}
