package identity

import (
	"github.com/jrsteele09/go-school-session/profile"
	"github.com/jrsteele09/go-school-session/token"
)

// User-visible reasons used when the backend gives none of its own.
const (
	ReasonTransport     = "서버와 통신할 수 없습니다. 잠시 후 다시 시도해 주세요."
	ReasonLoginFailed   = "로그인에 실패했습니다. 다시 시도해 주세요."
	ReasonSignupFailed  = "회원가입에 실패했습니다. 다시 시도해 주세요."
	ReasonMalformedData = "서버 응답을 처리할 수 없습니다."
)

// Outcome is the result of an exchange or an enrollment. It is exactly one
// of Authenticated, NeedsSignup or Failed.
type Outcome interface {
	isOutcome()
}

type Authenticated struct {
	Credentials token.Credentials
	Profile     profile.Profile
}

// NeedsSignup carries the identity token the backend returned for an
// unregistered caller. It is only ever passed to an enrollment call.
type NeedsSignup struct {
	PendingIdentityToken string
}

type Failed struct {
	Reason string
}

func (Authenticated) isOutcome() {}
func (NeedsSignup) isOutcome()   {}
func (Failed) isOutcome()        {}
