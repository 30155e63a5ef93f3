package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-school-session/auth"
	"github.com/jrsteele09/go-school-session/identity"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type outcomeResponse struct {
	Outcome string        `json:"outcome"`
	Reason  string        `json:"reason,omitempty"`
	Session auth.Snapshot `json:"session"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func newOutcomeResponse(o identity.Outcome, snap auth.Snapshot) outcomeResponse {
	resp := outcomeResponse{Session: snap}
	switch v := o.(type) {
	case identity.Authenticated:
		resp.Outcome = "authenticated"
	case identity.NeedsSignup:
		resp.Outcome = "needs_signup"
	case identity.Failed:
		resp.Outcome = "failed"
		resp.Reason = v.Reason
	}
	return resp
}
