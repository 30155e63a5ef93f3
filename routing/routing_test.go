package routing_test

import (
	"testing"

	"github.com/jrsteele09/go-school-session/profile"
	"github.com/jrsteele09/go-school-session/routing"
	"github.com/stretchr/testify/assert"
)

func TestLandingRouteFor(t *testing.T) {
	student := routing.LandingRouteFor(profile.RoleStudent)
	parent := routing.LandingRouteFor(profile.RoleParent)
	teacher := routing.LandingRouteFor(profile.RoleTeacher)

	assert.Equal(t, student, parent)
	assert.NotEqual(t, student, teacher)
	assert.NotEqual(t, parent, teacher)

	assert.Equal(t, routing.StudentDashboardRoute, student)
	assert.Equal(t, routing.TeacherDashboardRoute, teacher)
	assert.Equal(t, routing.LoginRoute, routing.LandingRouteFor(profile.Role("ADMIN")))
	assert.Equal(t, routing.LoginRoute, routing.LandingRouteFor(""))
}
