package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	BackendConfig
	StoreConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsDev() bool
	GetLogLevel() string
	GetFrontendURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type BackendConfig interface {
	GetBackendBaseURL() string
	GetLoginPath() string
	GetMemberSignupPath() string
	GetParentSignupPath() string
	GetProfilePath() string
	GetBackendTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth   `envPrefix:"OAUTH_"`
	Backend `envPrefix:"BACKEND_"`
	Store   `envPrefix:"SESSION_"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}
	return FromEnv()
}

// FromEnv parses configuration from the process environment only.
func FromEnv() (Config, error) {
	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.Store.sanitize()
	return c, nil
}

func (c mainConfig) Validate() error {
	var errs []error
	if c.OAuth.ClientID == "" {
		errs = append(errs, errors.New("OAUTH_CLIENT_ID is required"))
	}
	if c.OAuth.RedirectURL == "" {
		errs = append(errs, errors.New("OAUTH_REDIRECT_URL is required"))
	}
	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("BACKEND_BASE_URL is required"))
	}
	if c.Store.Kind == StoreKindPostgres && c.Store.DatabaseURL == "" {
		errs = append(errs, errors.New("SESSION_DATABASE_URL is required for the postgres session backend"))
	}
	return errors.Join(errs...)
}
