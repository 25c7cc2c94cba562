package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/soltodo/service-layer/internal/auth"
	"github.com/soltodo/service-layer/internal/errors"
	"github.com/soltodo/service-layer/internal/httputil"
)

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req auth.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, errors.InvalidArgument("invalid request body"))
		return
	}

	resp, err := s.auth.Authenticate(req)
	if err != nil {
		s.logger.WithContext(r.Context()).WithError(err).Warn("authentication failed")
		httputil.WriteError(w, err)
		return
	}

	s.logger.WithContext(r.Context()).WithField("public_key", resp.PublicKey).Info("wallet authenticated")
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	checks := map[string]string{"solana_rpc": "ok"}
	code := http.StatusOK

	if err := s.chain.GetHealth(ctx); err != nil {
		status = "degraded"
		checks["solana_rpc"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	httputil.WriteJSON(w, code, map[string]interface{}{
		"status":     status,
		"service":    "solana-todo",
		"program_id": s.todos.ProgramID().String(),
		"checks":     checks,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}
