package server

import (
	"net/http"

	"github.com/jrsteele09/go-school-session/auth"
)

// RequireAuthenticated rejects API calls unless the session holds a
// credential that has not expired locally. The rejection carries the
// snapshot so the caller can follow NextRoute.
func (s *Server) RequireAuthenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.session.Revalidate(r.Context())
		if snap.State != auth.StateAuthenticated {
			writeJSON(w, http.StatusUnauthorized, snap)
			return
		}
		next(w, r)
	}
}
