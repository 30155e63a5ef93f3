package authfakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-school-session/auth"
	"github.com/jrsteele09/go-school-session/profile"
	"github.com/jrsteele09/go-school-session/session"
	"github.com/jrsteele09/go-school-session/token"
)

var _ auth.SessionStore = (*RecordingStore)(nil)

// RecordingStore is an in-memory session.Store that counts writes and can
// be told to fail them.
type RecordingStore struct {
	*session.Store
	Backend *session.MemoryBackend

	lock    sync.Mutex
	saves   int
	clears  int
	saveErr error
}

func NewRecordingStore() *RecordingStore {
	backend := session.NewMemoryBackend()
	return &RecordingStore{Store: session.NewStore(backend), Backend: backend}
}

func (s *RecordingStore) FailSaves(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.saveErr = err
}

func (s *RecordingStore) Save(ctx context.Context, creds token.Credentials, p profile.Profile) error {
	s.lock.Lock()
	s.saves++
	err := s.saveErr
	s.lock.Unlock()
	if err != nil {
		return err
	}
	return s.Store.Save(ctx, creds, p)
}

func (s *RecordingStore) Clear(ctx context.Context) error {
	s.lock.Lock()
	s.clears++
	s.lock.Unlock()
	return s.Store.Clear(ctx)
}

func (s *RecordingStore) Saves() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.saves
}

func (s *RecordingStore) Clears() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.clears
}
