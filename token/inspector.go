package token

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// segmentParser only decodes segments. Nothing in this package verifies a
// signature; the issuer is trusted and expiry is a best-effort local read.
var segmentParser = jwtlib.NewParser(jwtlib.WithPaddingAllowed())

// ExpiryInstant reads the exp claim out of a three-segment credential.
// It reports false when the credential is not three dot-separated segments,
// the middle segment is not base64url JSON, or no numeric exp claim is present.
// A true result means "plausibly still valid", never "authentic".
func ExpiryInstant(credential string) (time.Time, bool) {
	segments := strings.Split(credential, ".")
	if len(segments) != 3 {
		return time.Time{}, false
	}

	payload, err := segmentParser.DecodeSegment(segments[1])
	if err != nil {
		return time.Time{}, false
	}

	var claims jwtlib.MapClaims
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the credential should no longer be used at now.
// An unreadable expiry counts as expired.
func Expired(credential string, now time.Time) bool {
	exp, ok := ExpiryInstant(credential)
	if !ok {
		return true
	}
	return !now.Before(exp)
}
