package identity

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-school-session/profile"
	"github.com/jrsteele09/go-school-session/signup"
)

// SubmitEnrollment builds the role payload for draft, attaches the pending
// identity token and posts it to the enrollment endpoint for the role.
// A draft that fails validation is returned as an error and nothing is sent.
func (c *Client) SubmitEnrollment(ctx context.Context, draft signup.Draft, pendingIdentityToken string) (Outcome, error) {
	if draft == nil {
		return nil, &signup.ValidationError{Field: "role", Reason: "no draft to submit"}
	}
	payload, err := signup.Build(draft.Role(), draft)
	if err != nil {
		return nil, err
	}

	path := c.memberSignupPath
	if payload.Role() == profile.RoleParent {
		path = c.parentSignupPath
	}

	env, err := c.call(ctx, http.MethodPost, path, nil, payload.WithIdentityToken(pendingIdentityToken))
	if err != nil {
		c.logger.Warn().Err(err).Str("role", string(draft.Role())).Msg("enrollment request failed")
		return Failed{Reason: ReasonTransport}, nil
	}

	if env.Code != codeOK {
		return Failed{Reason: reasonOr(env.Message, ReasonSignupFailed)}, nil
	}
	creds, p, err := normalise(env.Data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("enrollment succeeded without a usable session")
		return Failed{Reason: ReasonMalformedData}, nil
	}
	return Authenticated{Credentials: creds, Profile: p}, nil
}
