// Package routing decides which screen a resolved session lands on.
package routing

import "github.com/jrsteele09/go-school-session/profile"

const (
	LoginRoute            = "/login"
	CallbackRoute         = "/callback"
	SignupRoute           = "/signup"
	StudentDashboardRoute = "/student/dashboard"
	TeacherDashboardRoute = "/teacher/dashboard"
)

// LandingRouteFor maps a role onto its landing route. Parents share the
// student dashboard; that is a product decision, not a fallback.
func LandingRouteFor(role profile.Role) string {
	switch role {
	case profile.RoleStudent, profile.RoleParent:
		return StudentDashboardRoute
	case profile.RoleTeacher:
		return TeacherDashboardRoute
	default:
		return LoginRoute
	}
}
