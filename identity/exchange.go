package identity

import (
	"context"
	"net/http"
	"strings"
)

// ExchangeAuthorizationCode trades a provider authorization code for a
// session at the backend's combined login endpoint. It never returns an
// error: every failure, including transport failure, is a Failed outcome.
// It never retries, since codes are single use.
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, code string) Outcome {
	if strings.TrimSpace(code) == "" {
		return Failed{Reason: ReasonLoginFailed}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+code)
	header.Set("Redirect-URI", c.redirectURL)

	env, err := c.call(ctx, http.MethodPost, c.loginPath, header, nil)
	if err != nil {
		c.logger.Warn().Err(err).Msg("authorization code exchange failed")
		return Failed{Reason: ReasonTransport}
	}
	return c.interpretLogin(env)
}

func (c *Client) interpretLogin(env *envelope) Outcome {
	switch env.Code {
	case codeOK:
		creds, p, err := normalise(env.Data)
		if err != nil {
			c.logger.Warn().Err(err).Msg("login succeeded without a usable session")
			return Failed{Reason: ReasonMalformedData}
		}
		return Authenticated{Credentials: creds, Profile: p}
	case codeUnauthorized, codeNeedsSignup:
		// The backend puts the identity token for an unregistered caller in
		// the message field.
		if strings.TrimSpace(env.Message) == "" {
			return Failed{Reason: ReasonLoginFailed}
		}
		return NeedsSignup{PendingIdentityToken: env.Message}
	default:
		return Failed{Reason: reasonOr(env.Message, ReasonLoginFailed)}
	}
}
