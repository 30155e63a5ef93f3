package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-school-session/identity"
	"github.com/jrsteele09/go-school-session/profile"
	"github.com/jrsteele09/go-school-session/routing"
	"github.com/jrsteele09/go-school-session/session"
	"github.com/jrsteele09/go-school-session/signup"
	"github.com/jrsteele09/go-school-session/token"
)

const (
	// passKey serialises every authentication pass of one controller.
	passKey = "authenticate"

	maxConsumedCodes = 1024
)

// Gateway is the backend the controller authenticates against.
type Gateway interface {
	ExchangeAuthorizationCode(ctx context.Context, code string) identity.Outcome
	SubmitEnrollment(ctx context.Context, draft signup.Draft, pendingIdentityToken string) (identity.Outcome, error)
	FetchProfile(ctx context.Context, accessCredential string) (profile.Profile, error)
}

// SessionStore persists the session between runs.
type SessionStore interface {
	Save(ctx context.Context, creds token.Credentials, p profile.Profile) error
	Load(ctx context.Context) (*session.Stored, error)
	Clear(ctx context.Context) error
}

var (
	_ Gateway      = (*identity.Client)(nil)
	_ SessionStore = (*session.Store)(nil)
)

// SessionController owns the authentication state machine. One instance is
// created at process start and lives as long as the process.
type SessionController struct {
	gateway      Gateway
	store        SessionStore
	nowTime      func() time.Time
	logger       zerolog.Logger
	onTransition TransitionHook
	passes       singleflight.Group
	passJoined   func() // called once a caller is attached to a pass

	// mu guards the fields below and every store write.
	mu            sync.RWMutex
	state         State
	creds         token.Credentials
	profile       *profile.Profile
	pendingToken  string
	lastError     string
	consumed      map[string]struct{}
	consumedOrder []string
	emitted       []Transition
}

// passResult is shared by every caller of one authentication pass. Restore
// passes carry neither an outcome nor an error.
type passResult struct {
	outcome identity.Outcome
	err     error
}

func (r passResult) empty() bool {
	return r.outcome == nil && r.err == nil
}

// runPass runs fn as the pending authentication pass, or waits for the pass
// already pending and returns its result instead.
func (c *SessionController) runPass(fn func() passResult) passResult {
	ch := c.passes.DoChan(passKey, func() (interface{}, error) {
		return fn(), nil
	})
	if c.passJoined != nil {
		c.passJoined()
	}
	res := <-ch
	if res.Shared {
		c.logger.Debug().Msg("authentication pass shared")
	}
	return res.Val.(passResult)
}

// ControllerOption defines a function type to modify the SessionController instance.
type ControllerOption func(*SessionController)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ControllerOption {
	return func(c *SessionController) {
		c.nowTime = nowFunc
	}
}

func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *SessionController) {
		c.logger = logger
	}
}

// WithTransitionHook registers an observer for every state change.
func WithTransitionHook(hook TransitionHook) ControllerOption {
	return func(c *SessionController) {
		c.onTransition = hook
	}
}

// NewSessionController creates a controller in the Anonymous state. Call
// Restore to pick up a persisted session.
func NewSessionController(gateway Gateway, store SessionStore, options ...ControllerOption) (*SessionController, error) {
	if gateway == nil {
		return nil, errors.New("[NewSessionController] gateway is required")
	}
	if store == nil {
		return nil, errors.New("[NewSessionController] store is required")
	}

	c := &SessionController{
		gateway:  gateway,
		store:    store,
		nowTime:  time.Now,
		logger:   log.Logger,
		state:    StateAnonymous,
		consumed: make(map[string]struct{}),
	}
	for _, opt := range options {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "session").Logger()
	return c, nil
}

// Snapshot returns a copy of the current state.
func (c *SessionController) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *SessionController) snapshotLocked() Snapshot {
	s := Snapshot{
		State:     c.state,
		LastError: c.lastError,
		NextRoute: c.nextRouteLocked(),
	}
	if c.profile != nil {
		p := c.profile.Clone()
		s.Profile = &p
		s.RoleInfo = p.RoleInfo()
	}
	return s
}

// NextRoute is the screen the caller should be shown next.
func (c *SessionController) NextRoute() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nextRouteLocked()
}

func (c *SessionController) nextRouteLocked() string {
	switch c.state {
	case StateAuthenticated:
		if c.profile == nil {
			return routing.LoginRoute
		}
		return routing.LandingRouteFor(c.profile.Role)
	case StateNeedsSignup:
		return routing.SignupRoute
	default:
		return routing.LoginRoute
	}
}

// AccessCredential returns the session credential for downstream calls.
// It is only available while authenticated with an unexpired credential.
func (c *SessionController) AccessCredential() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateAuthenticated || token.Expired(c.creds.Access, c.nowTime()) {
		return "", false
	}
	return c.creds.Access, true
}

// moveLocked changes state and queues the transition for unlock.
func (c *SessionController) moveLocked(to State, attempt, reason string) {
	if c.state == to {
		return
	}
	c.emitted = append(c.emitted, Transition{
		From:    c.state,
		To:      to,
		Attempt: attempt,
		Reason:  reason,
		At:      c.nowTime(),
	})
	c.state = to
}

// unlock releases mu and then reports the transitions queued while it was held.
func (c *SessionController) unlock() {
	emitted := c.emitted
	c.emitted = nil
	c.mu.Unlock()

	for _, t := range emitted {
		ev := c.logger.Info().Str("from", string(t.From)).Str("to", string(t.To))
		if t.Attempt != "" {
			ev = ev.Str("attempt", t.Attempt)
		}
		if t.Reason != "" {
			ev = ev.Str("reason", t.Reason)
		}
		ev.Msg("session transition")
		if c.onTransition != nil {
			c.onTransition(t)
		}
	}
}

// resetLocked forgets the in-memory session.
func (c *SessionController) resetLocked() {
	c.creds = token.Credentials{}
	c.profile = nil
	c.pendingToken = ""
}

// clearStoreLocked removes the persisted session, logging rather than
// returning a failure so the in-memory state always moves on.
func (c *SessionController) clearStoreLocked(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear persisted session")
		return errors.Wrap(err, "[SessionController] clear store")
	}
	return nil
}

// consumeLocked records code as used and reports whether it was used before.
func (c *SessionController) consumeLocked(code string) bool {
	if _, used := c.consumed[code]; used {
		return true
	}
	c.consumed[code] = struct{}{}
	c.consumedOrder = append(c.consumedOrder, code)
	if len(c.consumedOrder) > maxConsumedCodes {
		delete(c.consumed, c.consumedOrder[0])
		c.consumedOrder = c.consumedOrder[1:]
	}
	return false
}
