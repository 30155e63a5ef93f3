package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-school-session/profile"
	"github.com/jrsteele09/go-school-session/token"
)

// Status codes carried in the body of every backend response.
const (
	codeOK           = 20000
	codeUnauthorized = 401
	codeNeedsSignup  = 40100
)

// envelope is the body every backend endpoint answers with. The transport
// status is not authoritative; Code is.
type envelope struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    *envelopeData `json:"data,omitempty"`
}

type envelopeData struct {
	AccessToken      string     `json:"accessToken"`
	MisspelledAccess string     `json:"acceessToken"`
	RefreshToken     string     `json:"refreshToken"`
	UserID           flexString `json:"userId"`
	UserName         string     `json:"userName"`
	UserType         string     `json:"userType"`
	Grade            *int       `json:"grade"`
	ClassNum         *int       `json:"classNum"`
	Number           *int       `json:"number"`
}

// flexString accepts an identifier sent either as a JSON string or a number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("userId: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

// normalise is the one place that knows about the backend's field spellings.
// The canonical accessToken wins when both spellings are present.
func normalise(data *envelopeData) (token.Credentials, profile.Profile, error) {
	if data == nil {
		return token.Credentials{}, profile.Profile{}, fmt.Errorf("response has no data")
	}

	access := data.AccessToken
	if access == "" {
		access = data.MisspelledAccess
	}
	if access == "" {
		return token.Credentials{}, profile.Profile{}, fmt.Errorf("response has no access credential")
	}

	p, err := profileFrom(data)
	if err != nil {
		return token.Credentials{}, profile.Profile{}, err
	}
	return token.Credentials{Access: access, Refresh: data.RefreshToken}, p, nil
}

func profileFrom(data *envelopeData) (profile.Profile, error) {
	role, err := profile.ParseRole(data.UserType)
	if err != nil {
		return profile.Profile{}, err
	}
	return profile.Profile{
		UserID:       string(data.UserID),
		DisplayName:  strings.TrimSpace(data.UserName),
		Role:         role,
		GradeLevel:   data.Grade,
		ClassSection: data.ClassNum,
		RollNumber:   data.Number,
	}, nil
}

// reasonOr prefers the backend's own message.
func reasonOr(message, fallback string) string {
	if m := strings.TrimSpace(message); m != "" {
		return m
	}
	return fallback
}
