package signup

import (
	"fmt"
	"slices"

	"github.com/jrsteele09/go-school-session/profile"
)

// Step is one page of the signup wizard and the draft fields it collects.
type Step struct {
	Name   string   `json:"name"`
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

var steps = map[profile.Role][]Step{
	profile.RoleStudent: {
		{Name: "basic", Title: "기본 정보", Fields: []string{"displayName", "gradeLevel", "classSection", "rollNumber"}},
		{Name: "personal", Title: "개인 정보", Fields: []string{"age", "gender", "birthDate"}},
		{Name: "contact", Title: "연락처", Fields: []string{"contact", "guardianContact", "address"}},
	},
	profile.RoleTeacher: {
		{Name: "basic", Title: "기본 정보", Fields: []string{"displayName", "gradeLevel", "classSection"}},
		{Name: "teaching", Title: "담당 정보", Fields: []string{"subject", "homeroom", "homeroomGrade", "homeroomSection"}},
	},
	profile.RoleParent: {
		{Name: "basic", Title: "기본 정보", Fields: []string{"displayName", "contact"}},
		{Name: "children", Title: "자녀 정보", Fields: []string{"children"}},
	},
}

// Steps lists the wizard pages for role in order. An unknown role has none.
func Steps(role profile.Role) []Step {
	return slices.Clone(steps[role])
}

// ValidateStep checks only the fields collected on the named step so a page
// can be rejected before the final submit.
func ValidateStep(draft Draft, stepName string) error {
	if draft == nil {
		return invalid("role", "no draft to validate")
	}
	for _, step := range Steps(draft.Role()) {
		if step.Name != stepName {
			continue
		}
		for _, field := range step.Fields {
			if err := draft.checkField(field); err != nil {
				return err
			}
		}
		return nil
	}
	return invalid("step", fmt.Sprintf("unknown step %q for %s", stepName, draft.Role()))
}
