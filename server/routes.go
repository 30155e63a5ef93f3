package server

import "net/http"

func (s *Server) initRoutes() {
	// OAUTH REDIRECT
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginRedirectHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.BrowserMiddleware()...))

	// SESSION API
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPILogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIProfileReload, ChainMiddleware(s.ReloadProfileHandler(), s.APIMiddleware(s.RequireAuthenticated)...))

	// SIGNUP API
	s.RegisterRouteHandler("GET "+RouteAPISignupSteps, ChainMiddleware(s.SignupStepsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPISignupValidate, ChainMiddleware(s.ValidateStepHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPISignup, ChainMiddleware(s.SubmitSignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPISignupCancel, ChainMiddleware(s.CancelSignupHandler(), s.APIMiddleware()...))

	// CORS preflight for every API route
	s.RegisterRouteHandler("OPTIONS "+RouteAPI, ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))
}
