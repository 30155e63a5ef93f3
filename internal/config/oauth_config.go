package config

type OAuthConfig interface {
	GetClientID() string
	GetRedirectURL() string
	GetAuthURL() string
	GetTokenURL() string
	GetIssuer() string
	GetScopes() []string
}

// OAuth describes the identity provider the agent redirects users to.
// When Issuer is set the endpoints are discovered instead of using AuthURL/TokenURL.
type OAuth struct {
	ClientID    string   `env:"CLIENT_ID"`
	RedirectURL string   `env:"REDIRECT_URL" envDefault:"http://localhost:8765/callback"`
	AuthURL     string   `env:"AUTH_URL"     envDefault:"https://kauth.kakao.com/oauth/authorize"`
	TokenURL    string   `env:"TOKEN_URL"    envDefault:"https://kauth.kakao.com/oauth/token"`
	Issuer      string   `env:"ISSUER"`
	Scopes      []string `env:"SCOPES"       envSeparator:","`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string    { return o.ClientID }
func (o OAuth) GetRedirectURL() string { return o.RedirectURL }
func (o OAuth) GetAuthURL() string     { return o.AuthURL }
func (o OAuth) GetTokenURL() string    { return o.TokenURL }
func (o OAuth) GetIssuer() string      { return o.Issuer }
func (o OAuth) GetScopes() []string    { return o.Scopes }
