package identity

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-school-session/internal/errors"
	"github.com/jrsteele09/go-school-session/profile"
)

// FetchProfile reads the caller's profile with an access credential. A
// rejected credential is reported as ErrCredentialExpired.
func (c *Client) FetchProfile(ctx context.Context, accessCredential string) (profile.Profile, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessCredential)

	env, err := c.call(ctx, http.MethodGet, c.profilePath, header, nil)
	if err != nil {
		return profile.Profile{}, errors.Wrapf(err, "[Client.FetchProfile]")
	}

	switch env.Code {
	case codeOK:
	case codeUnauthorized, codeNeedsSignup:
		return profile.Profile{}, errors.Wrapf(errors.ErrCredentialExpired, "[Client.FetchProfile] %s", env.Message)
	default:
		return profile.Profile{}, errors.Wrapf(errors.ErrProfileNotFound, "[Client.FetchProfile] code %d %s", env.Code, env.Message)
	}
	if env.Data == nil {
		return profile.Profile{}, errors.Wrapf(errors.ErrProfileNotFound, "[Client.FetchProfile] empty data")
	}

	p, err := profileFrom(env.Data)
	if err != nil {
		return profile.Profile{}, errors.Wrapf(err, "[Client.FetchProfile]")
	}
	return p, nil
}
