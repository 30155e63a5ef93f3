package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-school-session/internal/errors"
)

// SessionHandler returns the current snapshot after a local expiry check.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.session.Revalidate(r.Context()))
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.session.Logout(r.Context()); err != nil {
			log.Error().Err(err).Msg("logout could not clear the persisted session")
			writeError(w, http.StatusInternalServerError, "logged out, but the stored session could not be removed")
			return
		}
		writeJSON(w, http.StatusOK, s.session.Snapshot())
	}
}

func (s *Server) ReloadProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.session.Reload(r.Context())
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, s.session.Snapshot())
		case errors.Is(err, errors.ErrNotAuthenticated), errors.Is(err, errors.ErrCredentialExpired):
			writeJSON(w, http.StatusUnauthorized, s.session.Snapshot())
		default:
			log.Warn().Err(err).Msg("profile reload failed")
			writeError(w, http.StatusBadGateway, "profile could not be reloaded")
		}
	}
}
