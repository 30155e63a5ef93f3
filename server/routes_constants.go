package server

// Route path constants
// All agent routes are defined here to ensure consistency and prevent typos
const (
	// OAuth redirect
	RouteLogin    = "/login"
	RouteCallback = "/callback"

	// Session API
	RouteAPI               = "/api/"
	RouteAPISession        = "/api/session"
	RouteAPILogout         = "/api/logout"
	RouteAPIProfileReload  = "/api/profile/reload"
	RouteAPISignup         = "/api/signup"
	RouteAPISignupSteps    = "/api/signup/steps"
	RouteAPISignupValidate = "/api/signup/validate-step"
	RouteAPISignupCancel   = "/api/signup/cancel"
)
