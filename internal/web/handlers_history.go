package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/leaddist/internal/store"
)

// historyPage is the list response: the page items under "data" plus the
// pagination block.
type historyPage struct {
	Success bool `json:"success"`
	store.DistributionPage
}

// handleListDistributions serves ?page=&limit=, newest first. A missing
// or invalid limit falls back to the store's default page size.
func (s *Server) handleListDistributions(w http.ResponseWriter, r *http.Request) {
	page := parseIntParam(r, "page", 1)
	limit := parseIntParam(r, "limit", 0)

	p, err := s.deps.History.ListDistributions(r.Context(), page, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if p.Items == nil {
		p.Items = []store.DistributionSummary{}
	}
	writeJSON(w, historyPage{Success: true, DistributionPage: p})
}

func (s *Server) handleGetDistribution(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.History.GetDistribution(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, envelope{Success: true, Data: d})
}
