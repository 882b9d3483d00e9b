package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/leaddist/internal/agents"
)

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Agents.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if list == nil {
		list = []agents.Agent{}
	}
	n := len(list)
	writeJSON(w, envelope{Success: true, Count: &n, Data: list})
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	a, err := s.deps.Agents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, envelope{Success: true, Data: a})
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var in agents.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	a, err := s.deps.Agents.Create(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, envelope{
		Success: true,
		Message: "Agent created successfully",
		Data:    a,
	})
}

// handleUpdateAgent applies a partial update; absent fields are kept.
func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	var in agents.UpdateInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	a, err := s.deps.Agents.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, envelope{
		Success: true,
		Message: "Agent updated successfully",
		Data:    a,
	})
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Agents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, envelope{Success: true, Message: "Agent deleted successfully"})
}
