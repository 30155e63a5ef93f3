package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-school-session/auth"
	"github.com/jrsteele09/go-school-session/internal/config"
	"github.com/jrsteele09/go-school-session/oauthclient"
	"github.com/jrsteele09/go-school-session/server/loginstate"
)

// Server exposes one SessionController to the rendering layer over HTTP.
type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	session     *auth.SessionController
	authorizer  *oauthclient.Authorizer
	loginStates loginstate.Repo
	frontendURL string
	now         func() time.Time
}

func New(config config.Config, session *auth.SessionController, authorizer *oauthclient.Authorizer) (*Server, error) {
	if session == nil {
		return nil, fmt.Errorf("[Server New] session controller is required")
	}
	if authorizer == nil {
		return nil, fmt.Errorf("[Server New] authorizer is required")
	}

	s := &Server{
		env:         config.GetEnv(),
		mux:         http.NewServeMux(),
		config:      config,
		session:     session,
		authorizer:  authorizer,
		loginStates: loginstate.NewInMemoryRepo(),
		frontendURL: config.GetFrontendURL(),
		now:         time.Now,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func coloredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", coloredMethod(method), path)
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", coloredMethod(method), path, Red+error+ResetColor)
}

// frontendRoute resolves a route of the rendering layer.
func (s *Server) frontendRoute(route string) string {
	return s.frontendURL + route
}
