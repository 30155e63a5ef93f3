package signup

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-school-session/internal/utils"
	"github.com/jrsteele09/go-school-session/profile"
)

const birthDateLayout = "2006-01-02"

// Build validates draft against the rules for role and assembles the payload
// the enrollment endpoint expects. It never sees the identity token.
func Build(role profile.Role, draft Draft) (Payload, error) {
	if draft == nil {
		return nil, invalid("role", "no draft to submit")
	}
	if draft.Role() != role {
		return nil, invalid("role", fmt.Sprintf("draft is for %s, not %s", draft.Role(), role))
	}
	for _, step := range Steps(role) {
		for _, field := range step.Fields {
			if err := draft.checkField(field); err != nil {
				return nil, err
			}
		}
	}
	return draft.payload()
}

// reader coerces raw form values and keeps the first failure.
type reader struct {
	err error
}

func (r *reader) fail(field, reason string) {
	if r.err == nil {
		r.err = invalid(field, reason)
	}
}

func (r *reader) text(field, v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		r.fail(field, "is required")
	}
	return v
}

func (r *reader) integer(field, v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		r.fail(field, "is required")
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(field, fmt.Sprintf("%q is not a number", v))
		return 0
	}
	if n <= 0 {
		r.fail(field, "must be greater than zero")
		return 0
	}
	return n
}

func (r *reader) date(field, v string) string {
	v = r.text(field, v)
	if v == "" {
		return v
	}
	if _, err := time.Parse(birthDateLayout, v); err != nil {
		r.fail(field, fmt.Sprintf("%q is not a YYYY-MM-DD date", v))
	}
	return v
}

func unknownField(name string) error {
	return invalid(name, "unknown field")
}

func (d StudentDraft) checkField(name string) error {
	var r reader
	switch name {
	case "displayName":
		r.text(name, d.DisplayName)
	case "gradeLevel":
		r.integer(name, d.GradeLevel)
	case "classSection":
		r.integer(name, d.ClassSection)
	case "rollNumber":
		r.integer(name, d.RollNumber)
	case "age":
		r.integer(name, d.Age)
	case "gender":
		r.text(name, d.Gender)
	case "birthDate":
		r.date(name, d.BirthDate)
	case "contact":
		r.text(name, d.Contact)
	case "guardianContact":
		r.text(name, d.GuardianContact)
	case "address":
		r.text(name, d.Address)
	default:
		return unknownField(name)
	}
	return r.err
}

func (d StudentDraft) payload() (Payload, error) {
	var r reader
	p := MemberPayload{
		UserName:      r.text("displayName", d.DisplayName),
		UserType:      profile.RoleStudent,
		Grade:         r.integer("gradeLevel", d.GradeLevel),
		ClassNum:      r.integer("classSection", d.ClassSection),
		Number:        utils.Ptr(r.integer("rollNumber", d.RollNumber)),
		Age:           utils.Ptr(r.integer("age", d.Age)),
		Gender:        r.text("gender", d.Gender),
		BirthDate:     r.date("birthDate", d.BirthDate),
		Contact:       r.text("contact", d.Contact),
		ParentContact: r.text("guardianContact", d.GuardianContact),
		Address:       r.text("address", d.Address),
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func (d TeacherDraft) checkField(name string) error {
	var r reader
	switch name {
	case "displayName":
		r.text(name, d.DisplayName)
	case "gradeLevel":
		r.integer(name, d.GradeLevel)
	case "classSection":
		r.integer(name, d.ClassSection)
	case "subject", "homeroom":
	case "homeroomGrade":
		if d.Homeroom {
			r.integer(name, d.HomeroomGrade)
		}
	case "homeroomSection":
		if d.Homeroom {
			r.integer(name, d.HomeroomSection)
		}
	default:
		return unknownField(name)
	}
	return r.err
}

func (d TeacherDraft) payload() (Payload, error) {
	var r reader
	p := MemberPayload{
		UserName: r.text("displayName", d.DisplayName),
		UserType: profile.RoleTeacher,
		Grade:    r.integer("gradeLevel", d.GradeLevel),
		ClassNum: r.integer("classSection", d.ClassSection),
		Subject:  strings.TrimSpace(d.Subject),
	}
	if d.Homeroom {
		p.HomeroomGrade = utils.Ptr(r.integer("homeroomGrade", d.HomeroomGrade))
		p.HomeroomClass = utils.Ptr(r.integer("homeroomSection", d.HomeroomSection))
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func (d ParentDraft) checkField(name string) error {
	switch name {
	case "displayName":
		var r reader
		r.text(name, d.DisplayName)
		return r.err
	case "contact":
		return nil
	case "children":
		_, err := d.children()
		return err
	}
	return unknownField(name)
}

func (d ParentDraft) children() ([]ChildPayload, error) {
	if len(d.Children) == 0 {
		return nil, invalid("children", "at least one child is required")
	}

	var r reader
	children := make([]ChildPayload, 0, len(d.Children))
	for i, c := range d.Children {
		field := func(name string) string { return fmt.Sprintf("children[%d].%s", i, name) }
		children = append(children, ChildPayload{
			ChildName: r.text(field("name"), c.Name),
			Grade:     r.integer(field("gradeLevel"), c.GradeLevel),
			ClassNum:  r.integer(field("classSection"), c.ClassSection),
			Number:    r.integer(field("rollNumber"), c.RollNumber),
		})
	}
	if r.err != nil {
		return nil, r.err
	}
	return children, nil
}

func (d ParentDraft) payload() (Payload, error) {
	var r reader
	name := r.text("displayName", d.DisplayName)
	if r.err != nil {
		return nil, r.err
	}
	children, err := d.children()
	if err != nil {
		return nil, err
	}
	return ParentPayload{
		UserName: name,
		Children: children,
		Contact:  strings.TrimSpace(d.Contact),
	}, nil
}
