package config

import (
	"os"
	"strings"
)

type EnvVars struct {
	Port     string `env:"PORT"      envDefault:"8765"`
	AppName  string `env:"APP_NAME"  envDefault:"School Session"`
	Env      string `env:"ENV"       envDefault:"DEV"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// FrontendURL prefixes the routes the callback redirects to. Empty keeps
	// redirects relative to the agent.
	FrontendURL string `env:"FRONTEND_URL"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	if strings.HasPrefix(e.Port, ":") {
		return e.Port
	}
	return ":" + e.Port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

func (e EnvVars) IsDev() bool {
	return strings.EqualFold(e.GetEnv(), "DEV")
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetFrontendURL() string {
	return strings.TrimSuffix(e.FrontendURL, "/")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
