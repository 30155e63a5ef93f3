package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-school-session/identity"
	"github.com/jrsteele09/go-school-session/oauthclient"
	"github.com/jrsteele09/go-school-session/routing"
	"github.com/jrsteele09/go-school-session/server/loginstate"
)

const (
	stateCookieName     = "school_session_state"
	stateCookieMaxAge   = 600
	reasonStateMismatch = "로그인 요청이 만료되었습니다. 다시 로그인해 주세요."
)

// LoginRedirectHandler sends the browser to the provider's authorize page.
func (s *Server) LoginRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := oauthclient.NewState()
		if err != nil {
			logError(r.Method, r.URL.Path, err.Error())
			writeError(w, http.StatusInternalServerError, "could not start login")
			return
		}
		now := s.now()
		if err := s.loginStates.Issue(loginstate.Attempt{
			State:     state,
			CreatedAt: now,
			ExpiresAt: now.Add(stateCookieMaxAge * time.Second),
		}); err != nil {
			logError(r.Method, r.URL.Path, err.Error())
			writeError(w, http.StatusInternalServerError, "could not start login")
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Path:     RouteCallback,
			MaxAge:   stateCookieMaxAge,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, s.authorizer.AuthCodeURL(state), http.StatusSeeOther)
	}
}

// CallbackHandler completes the provider redirect and sends the browser to
// the screen the session resolved to. A failure reason rides along as ?error=.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.consumeState(w, r) {
			log.Warn().Msg("callback state does not match the login request")
			s.redirectWithError(w, r, routing.LoginRoute, reasonStateMismatch)
			return
		}

		// The pass outlives the browser request; a consumed code cannot be retried.
		ctx := context.WithoutCancel(r.Context())
		outcome := s.session.HandleCallback(ctx, r.URL)
		if failed, ok := outcome.(identity.Failed); ok {
			s.redirectWithError(w, r, s.session.NextRoute(), failed.Reason)
			return
		}
		http.Redirect(w, r, s.frontendRoute(s.session.NextRoute()), http.StatusSeeOther)
	}
}

// consumeState checks the state parameter against the cookie set by /login
// and retires it. Callbacks for logins the agent did not start carry no
// cookie and pass.
func (s *Server) consumeState(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return true
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: RouteCallback, MaxAge: -1})

	state := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(state), []byte(cookie.Value)) != 1 {
		return false
	}
	if _, err := s.loginStates.Take(state, s.now()); err != nil {
		log.Debug().Err(err).Msg("login state rejected")
		return false
	}
	return true
}

func (s *Server) redirectWithError(w http.ResponseWriter, r *http.Request, route, reason string) {
	target := s.frontendRoute(route) + "?error=" + url.QueryEscape(reason)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
