package signup

import (
	"slices"

	"github.com/jrsteele09/go-school-session/profile"
)

// Payload is the role-shaped body posted to an enrollment endpoint.
type Payload interface {
	Role() profile.Role

	// WithIdentityToken returns a copy carrying the pending identity token.
	WithIdentityToken(token string) Payload
}

var (
	_ Payload = MemberPayload{}
	_ Payload = ParentPayload{}
)

// MemberPayload is the flat body shared by students and teachers.
type MemberPayload struct {
	UserName      string       `json:"userName"`
	UserType      profile.Role `json:"userType"`
	Grade         int          `json:"grade"`
	ClassNum      int          `json:"classNum"`
	Number        *int         `json:"number,omitempty"`
	Age           *int         `json:"age,omitempty"`
	Gender        string       `json:"gender,omitempty"`
	BirthDate     string       `json:"birthDate,omitempty"`
	Contact       string       `json:"contact,omitempty"`
	ParentContact string       `json:"parentContact,omitempty"`
	Address       string       `json:"address,omitempty"`
	Subject       string       `json:"subject,omitempty"`
	HomeroomGrade *int         `json:"homeroomGrade,omitempty"`
	HomeroomClass *int         `json:"homeroomClass,omitempty"`
	KakaoToken    string       `json:"kakaoToken,omitempty"`
}

func (p MemberPayload) Role() profile.Role { return p.UserType }

func (p MemberPayload) WithIdentityToken(token string) Payload {
	p.KakaoToken = token
	return p
}

type ParentPayload struct {
	UserName   string         `json:"userName"`
	KakaoToken string         `json:"kakaoToken,omitempty"`
	Children   []ChildPayload `json:"children"`
	Contact    string         `json:"contact,omitempty"`
}

type ChildPayload struct {
	ChildName string `json:"childName"`
	Grade     int    `json:"grade"`
	ClassNum  int    `json:"classNum"`
	Number    int    `json:"number"`
}

func (p ParentPayload) Role() profile.Role { return profile.RoleParent }

func (p ParentPayload) WithIdentityToken(token string) Payload {
	p.KakaoToken = token
	p.Children = slices.Clone(p.Children)
	return p
}
