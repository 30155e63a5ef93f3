package session

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-school-session/internal/errors"
	"github.com/jrsteele09/go-school-session/profile"
	"github.com/jrsteele09/go-school-session/token"
)

// Storage key suffixes. Every key the store writes is listed here so Clear
// can remove all of them.
const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
	profileKey      = "profile"
)

// Backend is a durable key-value store. Apply must set and delete the given
// keys as one atomic operation: either every change is visible or none is.
type Backend interface {
	// GetMany returns the values for the keys that exist; missing keys are absent from the map
	GetMany(ctx context.Context, keys []string) (map[string]string, error)

	// Apply writes set and removes del atomically
	Apply(ctx context.Context, set map[string]string, del []string) error
}

// Stored is what Load found on disk. Profile is nil when a credential was
// stored without a profile, which the controller resolves with a refetch.
type Stored struct {
	Credentials token.Credentials
	Profile     *profile.Profile
}

// Store persists the session credential pair and the last known profile.
type Store struct {
	backend Backend
	prefix  string
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithKeyPrefix namespaces every key the store writes.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

func NewStore(backend Backend, options ...StoreOption) *Store {
	s := &Store{backend: backend}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Keys lists every key this store may write.
func (s *Store) Keys() []string {
	return []string{s.key(accessTokenKey), s.key(refreshTokenKey), s.key(profileKey)}
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// Save replaces the persisted session with creds and p in one backend write.
// A pair without a refresh credential removes any previously stored one.
func (s *Store) Save(ctx context.Context, creds token.Credentials, p profile.Profile) error {
	if err := creds.Validate(); err != nil {
		return errors.Wrapf(err, "[Store.Save]")
	}
	if err := p.Validate(); err != nil {
		return errors.Wrapf(err, "[Store.Save]")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrapf(err, "[Store.Save] marshal profile")
	}

	set := map[string]string{
		s.key(accessTokenKey): creds.Access,
		s.key(profileKey):     string(data),
	}
	var del []string
	if creds.HasRefresh() {
		set[s.key(refreshTokenKey)] = creds.Refresh
	} else {
		del = append(del, s.key(refreshTokenKey))
	}

	if err := s.backend.Apply(ctx, set, del); err != nil {
		return errors.Wrapf(err, "[Store.Save] backend apply")
	}
	return nil
}

// Load returns the persisted session, or nil when no access credential is stored.
func (s *Store) Load(ctx context.Context) (*Stored, error) {
	values, err := s.backend.GetMany(ctx, s.Keys())
	if err != nil {
		return nil, errors.Wrapf(err, "[Store.Load] backend get")
	}

	access := values[s.key(accessTokenKey)]
	if access == "" {
		return nil, nil
	}

	stored := &Stored{
		Credentials: token.Credentials{
			Access:  access,
			Refresh: values[s.key(refreshTokenKey)],
		},
	}

	raw, ok := values[s.key(profileKey)]
	if !ok || raw == "" {
		return stored, nil
	}

	var p profile.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptSession, "[Store.Load] profile: %v", err)
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptSession, "[Store.Load] profile: %v", err)
	}
	stored.Profile = &p
	return stored, nil
}

// Clear removes every key the store has ever written.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Apply(ctx, nil, s.Keys()); err != nil {
		return errors.Wrapf(err, "[Store.Clear] backend apply")
	}
	return nil
}
