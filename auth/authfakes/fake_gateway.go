package authfakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-school-session/auth"
	"github.com/jrsteele09/go-school-session/identity"
	"github.com/jrsteele09/go-school-session/internal/errors"
	"github.com/jrsteele09/go-school-session/profile"
	"github.com/jrsteele09/go-school-session/signup"
)

var _ auth.Gateway = (*FakeGateway)(nil)

// FakeGateway answers from canned outcomes and counts every call.
type FakeGateway struct {
	lock      sync.Mutex
	exchanges map[string]identity.Outcome
	enroll    identity.Outcome
	profiles  map[string]profile.Profile
	hold      chan struct{}
	entered   chan struct{}

	exchangeCalls int
	enrollCalls   int
	profileCalls  int
	lastToken     string
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		exchanges: make(map[string]identity.Outcome),
		profiles:  make(map[string]profile.Profile),
		enroll:    identity.Failed{Reason: "no enrollment outcome configured"},
	}
}

func (g *FakeGateway) OnExchange(code string, outcome identity.Outcome) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.exchanges[code] = outcome
}

func (g *FakeGateway) OnEnroll(outcome identity.Outcome) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.enroll = outcome
}

func (g *FakeGateway) OnProfile(access string, p profile.Profile) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.profiles[access] = p
}

// Hold makes subsequent gateway calls block until release is called.
// entered receives once per call that reaches the gateway.
func (g *FakeGateway) Hold() (entered <-chan struct{}, release func()) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.hold = make(chan struct{})
	g.entered = make(chan struct{}, 16)
	hold := g.hold
	var once sync.Once
	return g.entered, func() { once.Do(func() { close(hold) }) }
}

// wait blocks while the gateway is held. It reports false when ctx ends first.
func (g *FakeGateway) wait(ctx context.Context) bool {
	g.lock.Lock()
	hold, entered := g.hold, g.entered
	g.lock.Unlock()
	if hold == nil {
		return true
	}

	entered <- struct{}{}
	select {
	case <-hold:
		return true
	case <-ctx.Done():
		return false
	}
}

func (g *FakeGateway) ExchangeAuthorizationCode(ctx context.Context, code string) identity.Outcome {
	g.lock.Lock()
	g.exchangeCalls++
	outcome, ok := g.exchanges[code]
	g.lock.Unlock()

	if !g.wait(ctx) {
		return identity.Failed{Reason: identity.ReasonTransport}
	}
	if !ok {
		return identity.Failed{Reason: "unknown authorization code"}
	}
	return outcome
}

func (g *FakeGateway) SubmitEnrollment(ctx context.Context, draft signup.Draft, pendingIdentityToken string) (identity.Outcome, error) {
	if draft == nil {
		return nil, &signup.ValidationError{Field: "role", Reason: "no draft to submit"}
	}
	if _, err := signup.Build(draft.Role(), draft); err != nil {
		return nil, err
	}

	g.lock.Lock()
	g.enrollCalls++
	g.lastToken = pendingIdentityToken
	outcome := g.enroll
	g.lock.Unlock()

	if !g.wait(ctx) {
		return identity.Failed{Reason: identity.ReasonTransport}, nil
	}
	return outcome, nil
}

func (g *FakeGateway) FetchProfile(ctx context.Context, accessCredential string) (profile.Profile, error) {
	g.lock.Lock()
	g.profileCalls++
	p, ok := g.profiles[accessCredential]
	g.lock.Unlock()

	if !g.wait(ctx) {
		return profile.Profile{}, ctx.Err()
	}
	if !ok {
		return profile.Profile{}, errors.Wrapf(errors.ErrCredentialExpired, "fake gateway")
	}
	return p, nil
}

func (g *FakeGateway) ExchangeCalls() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.exchangeCalls
}

func (g *FakeGateway) EnrollCalls() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.enrollCalls
}

func (g *FakeGateway) ProfileCalls() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.profileCalls
}

// LastIdentityToken is the pending token passed to the last enrollment.
func (g *FakeGateway) LastIdentityToken() string {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.lastToken
}
