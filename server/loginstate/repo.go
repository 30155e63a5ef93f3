// Package loginstate tracks the state values of logins the agent started, so
// each provider callback can be matched to exactly one outbound redirect.
package loginstate

import (
	"errors"
	"time"
)

var (
	ErrUnknownState = errors.New("login state not issued or already used")
	ErrStateExpired = errors.New("login state expired")
)

// Attempt is one outbound login redirect.
type Attempt struct {
	State     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Repo interface {
	Issue(attempt Attempt) error
	// Take removes the attempt and returns it. A state can be taken once.
	Take(state string, now time.Time) (Attempt, error)
}
