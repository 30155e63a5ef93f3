package token

import (
	"github.com/jrsteele09/go-school-session/internal/errors"
)

// Credentials is the session credential pair issued by the backend after a
// successful login or enrollment. Refresh is empty when none was issued.
type Credentials struct {
	Access  string `json:"accessToken"`
	Refresh string `json:"refreshToken,omitempty"`
}

// Validate checks the access credential is structurally well-formed: three
// segments with a decodable expiry. It must pass before the pair is persisted.
func (c Credentials) Validate() error {
	if c.Access == "" {
		return errors.Wrapf(errors.ErrMalformedCredential, "empty access credential")
	}
	if _, ok := ExpiryInstant(c.Access); !ok {
		return errors.Wrapf(errors.ErrMalformedCredential, "access credential has no readable expiry")
	}
	return nil
}

func (c Credentials) HasRefresh() bool {
	return c.Refresh != ""
}
