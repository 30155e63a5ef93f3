package auth

import (
	"time"

	"github.com/jrsteele09/go-school-session/profile"
)

// State is the position of a SessionController in the authentication
// lifecycle.
type State string

const (
	StateAnonymous      State = "ANONYMOUS"
	StateAuthenticating State = "AUTHENTICATING"
	StateNeedsSignup    State = "NEEDS_SIGNUP"
	StateAuthenticated  State = "AUTHENTICATED"
	StateExpired        State = "EXPIRED"
)

// Snapshot is a read-only copy of the controller state for consumers.
type Snapshot struct {
	State     State            `json:"state"`
	Profile   *profile.Profile `json:"profile,omitempty"`
	RoleInfo  string           `json:"roleInfo,omitempty"`
	LastError string           `json:"lastError,omitempty"`
	NextRoute string           `json:"nextRoute"`
}

// Transition records one state change.
type Transition struct {
	From    State
	To      State
	Attempt string // empty outside authentication passes
	Reason  string
	At      time.Time
}

// TransitionHook observes every transition. It runs after the controller
// lock is released and may call back into the controller.
type TransitionHook func(Transition)
