package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StoreKind selects where the persisted session lives.
type StoreKind string

const (
	StoreKindMemory   StoreKind = "memory"
	StoreKindFile     StoreKind = "file"
	StoreKindRedis    StoreKind = "redis"
	StoreKindPostgres StoreKind = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreKind.
func (k *StoreKind) UnmarshalText(text []byte) error {
	v := StoreKind(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case StoreKindMemory, StoreKindFile, StoreKindRedis, StoreKindPostgres:
		*k = v
		return nil
	default:
		return fmt.Errorf("invalid StoreKind: %q (valid options: memory, file, redis, postgres)", string(text))
	}
}

type StoreConfig interface {
	GetStoreKind() StoreKind
	GetStoreFilePath() string
	GetStoreFileKey() string
	GetStoreKeyPrefix() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetDatabaseURL() string
}

type Store struct {
	Kind          StoreKind `env:"BACKEND"        envDefault:"file"`
	FilePath      string    `env:"FILE_PATH"`
	FileKey       string    `env:"FILE_KEY"`
	KeyPrefix     string    `env:"KEY_PREFIX"     envDefault:"school-session:"`
	RedisAddr     string    `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string    `env:"REDIS_PASSWORD"`
	RedisDB       int       `env:"REDIS_DB"       envDefault:"0"`
	DatabaseURL   string    `env:"DATABASE_URL"`
}

var _ StoreConfig = Store{}

func (s *Store) sanitize() {
	if s.FilePath == "" {
		s.FilePath = filepath.Join(configDir(), "session.json")
	}
}

func configDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "school-session")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "school-session")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "school-session")
}

func (s Store) GetStoreKind() StoreKind   { return s.Kind }
func (s Store) GetStoreFilePath() string  { return s.FilePath }
func (s Store) GetStoreFileKey() string   { return s.FileKey }
func (s Store) GetStoreKeyPrefix() string { return s.KeyPrefix }
func (s Store) GetRedisAddr() string      { return s.RedisAddr }
func (s Store) GetRedisPassword() string  { return s.RedisPassword }
func (s Store) GetRedisDB() int           { return s.RedisDB }
func (s Store) GetDatabaseURL() string    { return s.DatabaseURL }
