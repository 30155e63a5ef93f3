package auth

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-school-session/identity"
	interrors "github.com/jrsteele09/go-school-session/internal/errors"
	"github.com/jrsteele09/go-school-session/oauthclient"
	"github.com/jrsteele09/go-school-session/token"
)

const (
	reasonMissingCode    = "로그인 정보가 전달되지 않았습니다. 다시 로그인해 주세요."
	reasonProviderDenied = "카카오 로그인이 취소되었습니다."
	reasonCodeReplayed   = "이미 사용된 로그인 요청입니다. 다시 로그인해 주세요."
	reasonBadCredential  = "서버가 올바르지 않은 인증 정보를 반환했습니다."
	reasonPersistFailed  = "로그인 정보를 저장하지 못했습니다."
)

// HandleCallback completes a provider redirect. A callback without a code
// fails immediately and sends nothing to the backend.
func (c *SessionController) HandleCallback(ctx context.Context, callbackURL *url.URL) identity.Outcome {
	code, err := oauthclient.CodeFromCallback(callbackURL)
	if err != nil {
		reason := reasonMissingCode
		if interrors.Is(err, interrors.ErrProviderDenied) {
			reason = reasonProviderDenied
		}
		c.logger.Warn().Err(err).Msg("callback without authorization code")
		return c.failNow(ctx, reason)
	}
	return c.ExchangeCode(ctx, code)
}

// ExchangeCode runs an authentication pass for an authorization code. A
// call made while another exchange or enrollment is pending joins it and
// receives the same outcome. A code that was already exchanged fails without
// a network call.
func (c *SessionController) ExchangeCode(ctx context.Context, code string) identity.Outcome {
	for {
		res := c.runPass(func() passResult {
			return passResult{outcome: c.exchange(ctx, code)}
		})
		// A joined Restore pass has no outcome and never used the code.
		if !res.empty() {
			return res.outcome
		}
	}
}

func (c *SessionController) exchange(ctx context.Context, code string) identity.Outcome {
	attempt := uuid.NewString()

	c.mu.Lock()
	if c.consumeLocked(code) {
		c.unlock()
		c.logger.Warn().Str("attempt", attempt).Msg("authorization code replayed")
		return c.failNow(ctx, reasonCodeReplayed)
	}
	c.lastError = ""
	c.moveLocked(StateAuthenticating, attempt, "authorization code received")
	c.unlock()

	outcome := c.gateway.ExchangeAuthorizationCode(ctx, code)
	return c.settle(ctx, attempt, outcome)
}

// settle applies the outcome of a pass. It makes exactly one transition out
// of Authenticating.
func (c *SessionController) settle(ctx context.Context, attempt string, outcome identity.Outcome) identity.Outcome {
	c.mu.Lock()
	defer c.unlock()

	switch o := outcome.(type) {
	case identity.Authenticated:
		if err := o.Credentials.Validate(); err != nil {
			c.logger.Warn().Err(err).Str("attempt", attempt).Msg("rejecting malformed credential")
			return c.failLocked(ctx, attempt, reasonBadCredential)
		}
		if token.Expired(o.Credentials.Access, c.nowTime()) {
			c.logger.Warn().Str("attempt", attempt).Msg("rejecting credential that is already expired")
			return c.failLocked(ctx, attempt, reasonBadCredential)
		}
		if err := o.Profile.Validate(); err != nil {
			return c.failLocked(ctx, attempt, reasonBadCredential)
		}
		if err := c.store.Save(ctx, o.Credentials, o.Profile); err != nil {
			c.logger.Error().Err(err).Str("attempt", attempt).Msg("failed to persist session")
			return c.failLocked(ctx, attempt, reasonPersistFailed)
		}

		p := o.Profile.Clone()
		c.creds = o.Credentials
		c.profile = &p
		c.pendingToken = ""
		c.lastError = ""
		c.moveLocked(StateAuthenticated, attempt, "")
		return o

	case identity.NeedsSignup:
		// Any earlier session belongs to another identity.
		_ = c.clearStoreLocked(ctx)
		c.resetLocked()
		c.pendingToken = o.PendingIdentityToken
		c.lastError = ""
		c.moveLocked(StateNeedsSignup, attempt, "")
		return o

	case identity.Failed:
		return c.failLocked(ctx, attempt, o.Reason)

	default:
		return c.failLocked(ctx, attempt, identity.ReasonLoginFailed)
	}
}

// failNow records a failure that never reached the network. A live
// authenticated session is left as it is.
func (c *SessionController) failNow(ctx context.Context, reason string) identity.Outcome {
	c.mu.Lock()
	defer c.unlock()
	if c.state == StateAuthenticated {
		c.logger.Info().Str("reason", reason).Msg("stray callback ignored while authenticated")
		return identity.Failed{Reason: reason}
	}
	return c.failLocked(ctx, "", reason)
}

// failLocked lands in Anonymous with nothing persisted.
func (c *SessionController) failLocked(ctx context.Context, attempt, reason string) identity.Outcome {
	_ = c.clearStoreLocked(ctx)
	c.resetLocked()
	c.lastError = reason
	c.moveLocked(StateAnonymous, attempt, reason)
	return identity.Failed{Reason: reason}
}
