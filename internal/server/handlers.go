package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"robo_advisor/internal/allocation"
	"robo_advisor/internal/dialog"

	"github.com/go-chi/chi/v5"
)

const maxEventBytes = 1 << 20

// allocationResponse is one row of the allocation table.
type allocationResponse struct {
	RiskLevel string  `json:"risk_level"`
	Bond      float64 `json:"bond"`
	Equity    float64 `json:"equity"`
	Fallback  bool    `json:"fallback"`
}

func newAllocationResponse(level allocation.RiskLevel) allocationResponse {
	w := allocation.Resolve(level)
	return allocationResponse{
		RiskLevel: string(level),
		Bond:      w.Bond,
		Equity:    w.Equity,
		Fallback:  !level.Known(),
	}
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

// handleDialog is the code hook: one event in, one dialog response out.
// Handler failures that still produced a response (a failed Close) are
// logged and answered with 200 so the user sees the apology.
func (s *Server) handleDialog(w http.ResponseWriter, r *http.Request) {
	var ev dialog.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes)).Decode(&ev); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if ev.CurrentIntent.Name == "" {
		s.writeError(w, http.StatusBadRequest, "currentIntent.name is required")
		return
	}

	resp, err := s.dispatcher.Dispatch(r.Context(), ev)
	if err != nil {
		if errors.Is(err, dialog.ErrUnsupportedIntent) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if resp.DialogAction == nil {
			s.log.Error().Err(err).Str("intent", ev.CurrentIntent.Name).Msg("Dialog handler failed")
			s.writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		s.log.Error().Err(err).Str("intent", ev.CurrentIntent.Name).Msg("Dialog handler failed, returning fallback response")
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleListAllocations returns the allocation of every known risk level
func (s *Server) handleListAllocations(w http.ResponseWriter, r *http.Request) {
	levels := allocation.Levels()
	out := make([]allocationResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, newAllocationResponse(l))
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"allocations": out,
		"fallback":    allocation.AllEquity,
	})
}

// handleGetAllocation resolves one risk level; unknown levels get the fallback
func (s *Server) handleGetAllocation(w http.ResponseWriter, r *http.Request) {
	level := allocation.RiskLevel(chi.URLParam(r, "riskLevel"))
	s.writeJSON(w, http.StatusOK, newAllocationResponse(level))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
