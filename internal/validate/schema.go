package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Type int

const (
	String Type = iota
	UUID
	Object
)

// Field declares the constraints on one payload key.
type Field struct {
	Name     string
	Type     Type
	Required bool
	Min, Max int
	Email    bool
	OneOf    []string
	Default  any
}

// Schema checks fields in declaration order and stops at the first violation.
// Keys the schema does not declare are rejected.
type Schema struct {
	fields []Field
}

func NewSchema(fields ...Field) *Schema {
	return &Schema{fields: fields}
}

// Partial derives an update schema: only the named fields, none required,
// no defaults.
func (s *Schema) Partial(names ...string) *Schema {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	out := &Schema{}
	for _, f := range s.fields {
		if !keep[f.Name] {
			continue
		}
		f.Required = false
		f.Default = nil
		out.fields = append(out.fields, f)
	}
	return out
}

func (s *Schema) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Error is a single constraint violation.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

var checker = validator.New()

func (s *Schema) Validate(payload any) (Values, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, &Error{Field: "value", Message: `"value" must be of type object`}
	}
	out := make(Values, len(s.fields))
	declared := make(map[string]bool, len(s.fields))
	for _, f := range s.fields {
		declared[f.Name] = true
		raw, present := obj[f.Name]
		if !present {
			if f.Required {
				return nil, fail(f.Name, "is required")
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}
		v, err := f.check(raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	var unknown []string
	for k := range obj {
		if !declared[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fail(unknown[0], "is not allowed")
	}
	return out, nil
}

func (f Field) check(raw any) (any, error) {
	if f.Type == Object {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fail(f.Name, "must be of type object")
		}
		return m, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fail(f.Name, "must be a string")
	}
	if s == "" {
		return nil, fail(f.Name, "is not allowed to be empty")
	}
	if f.Type == UUID {
		// uuid.Parse also takes urn and braced forms; only the hyphenated
		// 36-character form is accepted here.
		if len(s) != 36 {
			return nil, fail(f.Name, "must be a valid GUID")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fail(f.Name, "must be a valid GUID")
		}
		return id.String(), nil
	}
	if f.Min > 0 && checker.Var(s, "min="+strconv.Itoa(f.Min)) != nil {
		return nil, fail(f.Name, fmt.Sprintf("length must be at least %d characters long", f.Min))
	}
	if f.Max > 0 && checker.Var(s, "max="+strconv.Itoa(f.Max)) != nil {
		return nil, fail(f.Name, fmt.Sprintf("length must be less than or equal to %d characters long", f.Max))
	}
	if f.Email && !validEmail(s) {
		return nil, fail(f.Name, "must be a valid email")
	}
	if len(f.OneOf) > 0 && checker.Var(s, "oneof="+strings.Join(f.OneOf, " ")) != nil {
		return nil, fail(f.Name, "must be one of ["+strings.Join(f.OneOf, ", ")+"]")
	}
	return s, nil
}

// validEmail additionally requires an alphabetic top-level label of at least
// two characters, which validator's email rule does not.
func validEmail(s string) bool {
	if checker.Var(s, "email") != nil {
		return false
	}
	domain := s[strings.LastIndexByte(s, '@')+1:]
	tld := domain[strings.LastIndexByte(domain, '.')+1:]
	return tld != domain && checker.Var(tld, "alpha,min=2") == nil
}

func fail(field, msg string) *Error {
	return &Error{Field: field, Message: strconv.Quote(field) + " " + msg}
}

// Values is a validated payload. Absent optional fields have no key.
type Values map[string]any

func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// String returns nil when the field was absent.
func (v Values) String(name string) *string {
	s, ok := v[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func (v Values) Object(name string) map[string]any {
	m, _ := v[name].(map[string]any)
	return m
}
