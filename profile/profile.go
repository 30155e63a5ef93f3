package profile

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-school-session/internal/errors"
	"github.com/jrsteele09/go-school-session/internal/utils"
)

// Role is the school role of a signed-in user. The string form matches the
// backend's userType field.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleParent  Role = "PARENT"
)

// Roles lists every role the backend can return.
var Roles = []Role{RoleStudent, RoleTeacher, RoleParent}

// ParseRole maps a backend userType (case-insensitive) onto a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleStudent, RoleTeacher, RoleParent:
		return r, nil
	}
	return "", errors.Wrapf(errors.ErrUnknownRole, "%q", s)
}

// Valid reports whether r is exactly one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleParent:
		return true
	}
	return false
}

// Label is the display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "학생"
	case RoleTeacher:
		return "교사"
	case RoleParent:
		return "학부모"
	}
	return ""
}

// Profile is the last known identity of the signed-in user.
// GradeLevel, ClassSection and RollNumber are nil unless the backend returned them.
type Profile struct {
	UserID       string `json:"userId,omitempty"`
	DisplayName  string `json:"userName"`
	Role         Role   `json:"userType"`
	GradeLevel   *int   `json:"grade,omitempty"`
	ClassSection *int   `json:"classNum,omitempty"`
	RollNumber   *int   `json:"number,omitempty"`
}

// Validate checks the invariants every stored or returned profile must hold.
func (p Profile) Validate() error {
	if !p.Role.Valid() {
		return errors.Wrapf(errors.ErrUnknownRole, "profile role %q", p.Role)
	}
	return nil
}

// RoleInfo renders the class placement, e.g. "2학년 3반". It is derived on
// every call so it can never drift from the fields it is built from.
func (p Profile) RoleInfo() string {
	switch {
	case p.GradeLevel != nil && p.ClassSection != nil:
		info := fmt.Sprintf("%d학년 %d반", *p.GradeLevel, *p.ClassSection)
		if p.Role == RoleStudent && p.RollNumber != nil {
			info += fmt.Sprintf(" %d번", *p.RollNumber)
		}
		return info
	case p.GradeLevel != nil:
		return fmt.Sprintf("%d학년", *p.GradeLevel)
	}
	return p.Role.Label()
}

// Clone returns a copy that shares no pointers with p.
func (p Profile) Clone() Profile {
	p.GradeLevel = utils.PtrIf(utils.Value(p.GradeLevel), p.GradeLevel != nil)
	p.ClassSection = utils.PtrIf(utils.Value(p.ClassSection), p.ClassSection != nil)
	p.RollNumber = utils.PtrIf(utils.Value(p.RollNumber), p.RollNumber != nil)
	return p
}

// Equal compares every field, including the optional placements.
func (p Profile) Equal(o Profile) bool {
	return p.UserID == o.UserID &&
		p.DisplayName == o.DisplayName &&
		p.Role == o.Role &&
		utils.EqualPtr(p.GradeLevel, o.GradeLevel) &&
		utils.EqualPtr(p.ClassSection, o.ClassSection) &&
		utils.EqualPtr(p.RollNumber, o.RollNumber)
}
