package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	interrors "github.com/jrsteele09/go-school-session/internal/errors"
	"github.com/jrsteele09/go-school-session/token"
)

// Restore picks up the persisted session at start-up. An unexpired session
// is restored without a network call; a stored credential without a profile
// is completed with one profile fetch.
func (c *SessionController) Restore(ctx context.Context) Snapshot {
	c.runPass(func() passResult {
		c.restore(ctx)
		return passResult{}
	})
	return c.Snapshot()
}

func (c *SessionController) restore(ctx context.Context) {
	stored, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("discarding unreadable persisted session")
		c.mu.Lock()
		_ = c.clearStoreLocked(ctx)
		c.resetLocked()
		c.moveLocked(StateAnonymous, "", "persisted session unreadable")
		c.unlock()
		return
	}
	if stored == nil {
		return
	}

	if token.Expired(stored.Credentials.Access, c.nowTime()) {
		c.mu.Lock()
		c.expireLocked(ctx, "")
		c.unlock()
		return
	}

	if stored.Profile != nil {
		c.mu.Lock()
		p := stored.Profile.Clone()
		c.creds = stored.Credentials
		c.profile = &p
		c.pendingToken = ""
		c.moveLocked(StateAuthenticated, "", "restored")
		c.unlock()
		return
	}

	attempt := uuid.NewString()
	c.mu.Lock()
	c.moveLocked(StateAuthenticating, attempt, "restoring profile")
	c.unlock()

	p, err := c.gateway.FetchProfile(ctx, stored.Credentials.Access)

	c.mu.Lock()
	defer c.unlock()
	if err == nil {
		err = c.store.Save(ctx, stored.Credentials, p)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("attempt", attempt).Msg("could not complete restored session")
		c.expireLocked(ctx, attempt)
		return
	}
	c.creds = stored.Credentials
	c.profile = &p
	c.moveLocked(StateAuthenticated, attempt, "")
}

// expireLocked passes through Expired, clears the store and lands in Anonymous.
func (c *SessionController) expireLocked(ctx context.Context, attempt string) {
	c.moveLocked(StateExpired, attempt, "credential expired")
	_ = c.clearStoreLocked(ctx)
	c.resetLocked()
	c.moveLocked(StateAnonymous, attempt, "")
}

// Revalidate re-checks the credential expiry locally while running.
func (c *SessionController) Revalidate(ctx context.Context) Snapshot {
	c.mu.Lock()
	if c.state == StateAuthenticated && token.Expired(c.creds.Access, c.nowTime()) {
		c.expireLocked(ctx, "")
	}
	s := c.snapshotLocked()
	c.unlock()
	return s
}

// Logout forgets the session in memory and in the store. The in-memory
// session is gone even when clearing the store fails.
func (c *SessionController) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.unlock()

	err := c.clearStoreLocked(ctx)
	c.resetLocked()
	c.lastError = ""
	c.moveLocked(StateAnonymous, "", "logout")
	if err != nil {
		return errors.Wrap(err, "[SessionController.Logout]")
	}
	return nil
}

// Reload refetches the profile of the authenticated caller and persists it
// together with the current credential.
func (c *SessionController) Reload(ctx context.Context) error {
	c.mu.RLock()
	state, creds := c.state, c.creds
	c.mu.RUnlock()
	if state != StateAuthenticated {
		return errors.Wrapf(interrors.ErrNotAuthenticated, "[SessionController.Reload] state %s", state)
	}

	p, err := c.gateway.FetchProfile(ctx, creds.Access)

	c.mu.Lock()
	defer c.unlock()
	if c.state != StateAuthenticated || c.creds != creds {
		return errors.Wrap(interrors.ErrNotAuthenticated, "[SessionController.Reload] session changed during reload")
	}
	if err != nil {
		if interrors.Is(err, interrors.ErrCredentialExpired) {
			c.expireLocked(ctx, "")
		}
		return errors.Wrap(err, "[SessionController.Reload]")
	}
	if err := c.store.Save(ctx, creds, p); err != nil {
		return errors.Wrap(err, "[SessionController.Reload] persist")
	}
	if !c.profile.Equal(p) {
		c.logger.Info().Str("user", p.UserID).Msg("profile changed on reload")
	}
	c.profile = &p
	return nil
}
