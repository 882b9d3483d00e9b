package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/leaddist/internal/core"
	"github.com/JonMunkholm/leaddist/internal/logging"
)

// healthResponse reports liveness, database reachability and upload slots.
type healthResponse struct {
	Status    string                   `json:"status"`
	Message   string                   `json:"message"`
	Timestamp string                   `json:"timestamp"`
	Version   string                   `json:"version"`
	Database  string                   `json:"database,omitempty"`
	Uploads   core.UploadLimiterStatus `json:"uploads"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "OK",
		Message:   "Server is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Uploads:   s.deps.Limiter.Status(),
	}

	status := http.StatusOK
	if s.deps.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp.Database = "up"
		if err := s.deps.Health.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Warn("health: database ping failed", "error", err)
			resp.Status = "DEGRADED"
			resp.Message = "Database is unreachable"
			resp.Database = "down"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSONStatus(w, status, resp)
}
