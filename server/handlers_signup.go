package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrsteele09/go-school-session/internal/errors"
	"github.com/jrsteele09/go-school-session/profile"
	"github.com/jrsteele09/go-school-session/signup"
)

const maxDraftSize = 64 << 10

type stepsResponse struct {
	Role  profile.Role  `json:"role"`
	Label string        `json:"label"`
	Steps []signup.Step `json:"steps"`
}

type validateStepRequest struct {
	Step  string          `json:"step"`
	Draft json.RawMessage `json:"draft"`
}

type validateStepResponse struct {
	Valid bool                    `json:"valid"`
	Error *signup.ValidationError `json:"error,omitempty"`
}

// SignupStepsHandler lists the wizard pages for ?role=.
func (s *Server) SignupStepsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := profile.ParseRole(r.URL.Query().Get("role"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, stepsResponse{Role: role, Label: role.Label(), Steps: signup.Steps(role)})
	}
}

func (s *Server) ValidateStepHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateStepRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxDraftSize)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		draft, err := signup.DecodeDraft(req.Draft)
		if err == nil {
			err = signup.ValidateStep(draft, req.Step)
		}
		if err != nil {
			if verr, ok := asValidationError(err); ok {
				writeJSON(w, http.StatusOK, validateStepResponse{Valid: false, Error: verr})
				return
			}
			writeError(w, http.StatusBadRequest, "malformed draft")
			return
		}
		writeJSON(w, http.StatusOK, validateStepResponse{Valid: true})
	}
}

// SubmitSignupHandler submits a role-tagged draft for the pending identity.
func (s *Server) SubmitSignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxDraftSize))
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read request body")
			return
		}
		draft, err := signup.DecodeDraft(data)
		if err != nil {
			s.writeSignupError(w, err)
			return
		}

		outcome, err := s.session.SubmitSignup(context.WithoutCancel(r.Context()), draft)
		if err != nil {
			s.writeSignupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newOutcomeResponse(outcome, s.session.Snapshot()))
	}
}

func (s *Server) CancelSignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.session.CancelSignup(); err != nil {
			s.writeSignupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.session.Snapshot())
	}
}

func (s *Server) writeSignupError(w http.ResponseWriter, err error) {
	if verr, ok := asValidationError(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Reason, Field: verr.Field})
		return
	}
	if errors.Is(err, errors.ErrNoPendingSignup) {
		writeError(w, http.StatusConflict, "no signup is pending")
		return
	}
	writeError(w, http.StatusBadRequest, "malformed draft")
}

func asValidationError(err error) (*signup.ValidationError, bool) {
	var verr *signup.ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
