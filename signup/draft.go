package signup

import (
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-school-session/profile"
)

// Draft is the transient form state of one signup flow. The set of variants
// is closed: StudentDraft, TeacherDraft and ParentDraft.
type Draft interface {
	Role() profile.Role

	checkField(name string) error
	payload() (Payload, error)
}

// StudentDraft holds the raw form values entered by a student. Numeric
// fields stay strings until Build coerces them.
type StudentDraft struct {
	DisplayName     string `json:"displayName"`
	GradeLevel      string `json:"gradeLevel"`
	ClassSection    string `json:"classSection"`
	RollNumber      string `json:"rollNumber"`
	Age             string `json:"age"`
	Gender          string `json:"gender"`
	BirthDate       string `json:"birthDate"` // YYYY-MM-DD
	Contact         string `json:"contact"`
	GuardianContact string `json:"guardianContact"`
	Address         string `json:"address"`
}

// TeacherDraft holds a teacher's form values. HomeroomGrade and
// HomeroomSection are only read when Homeroom is set.
type TeacherDraft struct {
	DisplayName     string `json:"displayName"`
	GradeLevel      string `json:"gradeLevel"`
	ClassSection    string `json:"classSection"`
	Subject         string `json:"subject,omitempty"`
	Homeroom        bool   `json:"homeroom"`
	HomeroomGrade   string `json:"homeroomGrade,omitempty"`
	HomeroomSection string `json:"homeroomSection,omitempty"`
}

// ParentDraft holds a parent's form values and the roster of their children.
type ParentDraft struct {
	DisplayName string       `json:"displayName"`
	Contact     string       `json:"contact,omitempty"`
	Children    []ChildEntry `json:"children"`
}

type ChildEntry struct {
	Name         string `json:"name"`
	GradeLevel   string `json:"gradeLevel"`
	ClassSection string `json:"classSection"`
	RollNumber   string `json:"rollNumber"`
}

func (StudentDraft) Role() profile.Role { return profile.RoleStudent }
func (TeacherDraft) Role() profile.Role { return profile.RoleTeacher }
func (ParentDraft) Role() profile.Role  { return profile.RoleParent }

// DecodeDraft reads a JSON draft tagged by its "role" member.
func DecodeDraft(data []byte) (Draft, error) {
	var head struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	role, err := profile.ParseRole(head.Role)
	if err != nil {
		return nil, invalid("role", fmt.Sprintf("unknown role %q", head.Role))
	}

	var d Draft
	switch role {
	case profile.RoleStudent:
		var sd StudentDraft
		err = json.Unmarshal(data, &sd)
		d = sd
	case profile.RoleTeacher:
		var td TeacherDraft
		err = json.Unmarshal(data, &td)
		d = td
	case profile.RoleParent:
		var pd ParentDraft
		err = json.Unmarshal(data, &pd)
		d = pd
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s draft: %w", role, err)
	}
	return d, nil
}
