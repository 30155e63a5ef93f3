// Package oauthclient builds the outbound provider redirect and reads the
// authorization code off the inbound callback.
package oauthclient

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	interrors "github.com/jrsteele09/go-school-session/internal/errors"
)

// Config holds the provider registration. When Issuer is set the authorize
// endpoint is discovered from the issuer and AuthURL is ignored.
type Config struct {
	ClientID    string
	RedirectURL string
	AuthURL     string
	TokenURL    string
	Issuer      string
	Scopes      []string
	HTTPClient  *http.Client // Optional, used for discovery
}

// Authorizer builds provider redirect URLs.
type Authorizer struct {
	config *oauth2.Config
}

func NewAuthorizer(ctx context.Context, cfg Config) (*Authorizer, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	endpoint := oauth2.Endpoint{AuthURL: cfg.AuthURL, TokenURL: cfg.TokenURL}
	if cfg.Issuer != "" {
		httpClient := cfg.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: 30 * time.Second}
		}
		issuer := strings.TrimSuffix(strings.TrimSuffix(cfg.Issuer, "/"), "/.well-known/openid-configuration")
		op, err := gooidc.NewProvider(gooidc.ClientContext(ctx, httpClient), issuer)
		if err != nil {
			return nil, fmt.Errorf("oidc discovery: %w", err)
		}
		endpoint = op.Endpoint()
	}
	if endpoint.AuthURL == "" {
		return nil, errors.New("authorize URL is required")
	}

	return &Authorizer{
		config: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
			Endpoint:    endpoint,
		},
	}, nil
}

// AuthCodeURL is the URL the user is sent to in order to sign in with the
// provider. It always asks for response_type=code.
func (a *Authorizer) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// AuthorizeEndpoint is the provider endpoint in use, static or discovered.
func (a *Authorizer) AuthorizeEndpoint() string {
	return a.config.Endpoint.AuthURL
}

// NewState returns a random value for the state parameter.
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CodeFromCallback returns the authorization code carried by a provider
// callback URL.
func CodeFromCallback(u *url.URL) (string, error) {
	if u == nil {
		return "", interrors.ErrMissingCode
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		if desc := q.Get("error_description"); desc != "" {
			return "", interrors.Wrapf(interrors.ErrProviderDenied, "%s: %s", e, desc)
		}
		return "", interrors.Wrapf(interrors.ErrProviderDenied, "%s", e)
	}
	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		return "", interrors.ErrMissingCode
	}
	return code, nil
}
