package oauthclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-school-session/internal/errors"
	"github.com/jrsteele09/go-school-session/oauthclient"
	"github.com/stretchr/testify/require"
)

func TestAuthCodeURL_StaticEndpoint(t *testing.T) {
	a, err := oauthclient.NewAuthorizer(context.Background(), oauthclient.Config{
		ClientID:    "kakao-client",
		RedirectURL: "http://localhost:8765/callback",
		AuthURL:     "https://kauth.kakao.com/oauth/authorize",
	})
	require.NoError(t, err)

	u, err := url.Parse(a.AuthCodeURL("state-1"))
	require.NoError(t, err)
	require.Equal(t, "kauth.kakao.com", u.Host)
	require.Equal(t, "/oauth/authorize", u.Path)

	q := u.Query()
	require.Equal(t, "kakao-client", q.Get("client_id"))
	require.Equal(t, "http://localhost:8765/callback", q.Get("redirect_uri"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "state-1", q.Get("state"))
}

func TestNewAuthorizer_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  oauthclient.Config
	}{
		{"missing client id", oauthclient.Config{RedirectURL: "http://x/cb", AuthURL: "http://x/auth"}},
		{"missing redirect", oauthclient.Config{ClientID: "c", AuthURL: "http://x/auth"}},
		{"missing endpoint", oauthclient.Config{ClientID: "c", RedirectURL: "http://x/cb"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := oauthclient.NewAuthorizer(context.Background(), tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestNewAuthorizer_Discovery(t *testing.T) {
	var issuer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 issuer,
			"authorization_endpoint": issuer + "/oauth/authorize",
			"token_endpoint":         issuer + "/oauth/token",
			"jwks_uri":               issuer + "/.well-known/jwks.json",
		})
	}))
	defer srv.Close()
	issuer = srv.URL

	a, err := oauthclient.NewAuthorizer(context.Background(), oauthclient.Config{
		ClientID:    "kakao-client",
		RedirectURL: "http://localhost:8765/callback",
		AuthURL:     "https://ignored.example/authorize",
		Issuer:      issuer + "/",
		Scopes:      []string{"openid"},
	})
	require.NoError(t, err)
	require.Equal(t, issuer+"/oauth/authorize", a.AuthorizeEndpoint())

	u, err := url.Parse(a.AuthCodeURL("s"))
	require.NoError(t, err)
	require.Equal(t, "openid", u.Query().Get("scope"))
}

func TestNewAuthorizer_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := oauthclient.NewAuthorizer(context.Background(), oauthclient.Config{
		ClientID:    "c",
		RedirectURL: "http://localhost/cb",
		Issuer:      srv.URL,
	})
	require.Error(t, err)
}

func TestNewState(t *testing.T) {
	a, err := oauthclient.NewState()
	require.NoError(t, err)
	b, err := oauthclient.NewState()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.Len(t, a, 32)
}

func TestCodeFromCallback(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"code present", "http://localhost:8765/callback?code=abc&state=s", "abc", nil},
		{"code missing", "http://localhost:8765/callback?state=s", "", errors.ErrMissingCode},
		{"code blank", "http://localhost:8765/callback?code=%20", "", errors.ErrMissingCode},
		{"provider denied", "http://localhost:8765/callback?error=access_denied&error_description=User+denied", "", errors.ErrProviderDenied},
		{"error wins over code", "http://localhost:8765/callback?code=abc&error=server_error", "", errors.ErrProviderDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)

			code, err := oauthclient.CodeFromCallback(u)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, code)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, code)
		})
	}

	_, err := oauthclient.CodeFromCallback(nil)
	require.ErrorIs(t, err, errors.ErrMissingCode)
}
