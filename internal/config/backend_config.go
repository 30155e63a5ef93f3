package config

import (
	"strings"
	"time"
)

// Backend holds the school backend endpoints. The backend splits enrollment
// between parents and everyone else, so there are two signup paths.
type Backend struct {
	BaseURL          string        `env:"BASE_URL"           envDefault:"http://localhost:8080"`
	LoginPath        string        `env:"LOGIN_PATH"         envDefault:"/auth/kakao/login"`
	MemberSignupPath string        `env:"SIGNUP_PATH"        envDefault:"/auth/signup"`
	ParentSignupPath string        `env:"PARENT_SIGNUP_PATH" envDefault:"/auth/signup/parent"`
	ProfilePath      string        `env:"PROFILE_PATH"       envDefault:"/user/me"`
	Timeout          time.Duration `env:"TIMEOUT"            envDefault:"15s"`
}

var _ BackendConfig = Backend{}

func (b Backend) GetBackendBaseURL() string        { return strings.TrimSuffix(b.BaseURL, "/") }
func (b Backend) GetLoginPath() string             { return b.LoginPath }
func (b Backend) GetMemberSignupPath() string      { return b.MemberSignupPath }
func (b Backend) GetParentSignupPath() string      { return b.ParentSignupPath }
func (b Backend) GetProfilePath() string           { return b.ProfilePath }
func (b Backend) GetBackendTimeout() time.Duration { return b.Timeout }
