package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-school-session/identity"
	interrors "github.com/jrsteele09/go-school-session/internal/errors"
	"github.com/jrsteele09/go-school-session/signup"
)

// SubmitSignup finishes registration for the identity waiting in
// NeedsSignup. A draft that fails validation is returned as an error and
// leaves the state untouched.
func (c *SessionController) SubmitSignup(ctx context.Context, draft signup.Draft) (identity.Outcome, error) {
	c.mu.RLock()
	state := c.state
	c.mu.RUnlock()
	if state != StateNeedsSignup {
		return nil, errors.Wrapf(interrors.ErrNoPendingSignup, "[SessionController.SubmitSignup] state %s", state)
	}

	if draft == nil {
		return nil, &signup.ValidationError{Field: "role", Reason: "no draft to submit"}
	}
	if _, err := signup.Build(draft.Role(), draft); err != nil {
		return nil, err
	}

	for {
		res := c.runPass(func() passResult {
			outcome, err := c.enroll(ctx, draft)
			return passResult{outcome: outcome, err: err}
		})
		if !res.empty() {
			return res.outcome, res.err
		}
	}
}

func (c *SessionController) enroll(ctx context.Context, draft signup.Draft) (identity.Outcome, error) {
	attempt := uuid.NewString()

	c.mu.Lock()
	if c.state != StateNeedsSignup {
		state := c.state
		c.unlock()
		return nil, errors.Wrapf(interrors.ErrNoPendingSignup, "[SessionController.SubmitSignup] state %s", state)
	}
	pending := c.pendingToken
	c.lastError = ""
	c.moveLocked(StateAuthenticating, attempt, "enrollment submitted")
	c.unlock()

	outcome, err := c.gateway.SubmitEnrollment(ctx, draft, pending)
	if err != nil {
		// Nothing was sent; go back to waiting for a valid draft.
		c.mu.Lock()
		c.moveLocked(StateNeedsSignup, attempt, "enrollment rejected locally")
		c.unlock()
		return nil, err
	}

	if _, ok := outcome.(identity.NeedsSignup); ok {
		// Enrollment never leaves the caller pending.
		outcome = identity.Failed{Reason: identity.ReasonSignupFailed}
	}
	return c.settle(ctx, attempt, outcome), nil
}

// CancelSignup abandons a pending signup and discards its identity token.
func (c *SessionController) CancelSignup() error {
	c.mu.Lock()
	defer c.unlock()

	if c.state != StateNeedsSignup {
		return errors.Wrapf(interrors.ErrNoPendingSignup, "[SessionController.CancelSignup] state %s", c.state)
	}
	c.resetLocked()
	c.lastError = ""
	c.moveLocked(StateAnonymous, "", "signup cancelled")
	return nil
}
