// Package validation checks request bodies against embedded JSON schemas and
// decodes accepted bodies into typed payloads.
//
// Rejections name only the first offending field, in the order the fields
// are declared for the payload, using the wording API clients already
// depend on (for example `"aws_email" must be a valid email`).
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/skillkeeper/internal/server/apperr"
	"github.com/xeipuuv/gojsonschema"
)

// Schema names.
const (
	SkillCreate  = "skill-create"
	SkillUpdate  = "skill-update"
	UserRegister = "user-register"
	UserLogin    = "user-login"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// fieldOrder lists, per schema, the properties in the order they are
// checked. Nested reference fields share the list with top-level ones.
var fieldOrder = map[string][]string{
	SkillCreate:  {"skill_name", "skill_description", "references", "ref_link", "ref_category", "length_in_mins"},
	SkillUpdate:  {"skill_name", "skill_description", "references", "ref_link", "ref_category", "length_in_mins"},
	UserRegister: {"aws_email", "password", "last_name", "first_name", "dev"},
	UserLogin:    {"aws_email", "password"},
}

const rootLabel = "value"

// Validator holds the compiled schemas. It is safe for concurrent use.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(fieldOrder))}
	for name := range fieldOrder {
		data, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded schema %s: %w", name, err)
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		v.schemas[name] = s
	}
	return v, nil
}

// Validate checks payload against the named schema and, when it passes,
// decodes it into out. Rejections are apperr validation errors.
func (v *Validator) Validate(schema string, payload []byte, out any) error {
	s, ok := v.schemas[schema]
	if !ok {
		return fmt.Errorf("unknown schema %q", schema)
	}

	// A missing body is treated as an empty object.
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = []byte("{}")
	}

	if !json.Valid(payload) {
		return apperr.Validation(quote(rootLabel) + " must be valid JSON")
	}

	payload, err := coerceNumbers(payload, numericFields[schema])
	if err != nil {
		return apperr.Validation(quote(rootLabel) + " must be valid JSON")
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return apperr.Validation(quote(rootLabel) + " must be valid JSON")
	}

	if !result.Valid() {
		return apperr.Validation(firstMessage(schema, result.Errors()))
	}

	if err := json.Unmarshal(payload, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Validation(quote(typeErr.Field) + " must be a safe number")
		}
		return apperr.Validation(quote(rootLabel) + " must be valid JSON")
	}
	return nil
}

// issue is a schema failure resolved to the path of the field it concerns.
type issue struct {
	path []string
	err  gojsonschema.ResultError
}

func firstMessage(schema string, errs []gojsonschema.ResultError) string {
	issues := make([]issue, 0, len(errs))
	for _, e := range errs {
		issues = append(issues, issue{path: issuePath(e), err: e})
	}

	order := fieldOrder[schema]
	sort.SliceStable(issues, func(i, j int) bool {
		return less(order, issues[i], issues[j])
	})

	return message(issues[0])
}

// issuePath splits the failing field into segments. Failures reported on
// the parent object (missing or unexpected keys) are attributed to the key.
func issuePath(e gojsonschema.ResultError) []string {
	var path []string
	if f := e.Field(); f != "" && f != "(root)" {
		path = strings.Split(f, ".")
	}
	switch e.Type() {
	case "required", "additional_property_not_allowed":
		if p, ok := e.Details()["property"].(string); ok {
			path = append(path, p)
		}
	}
	return path
}

func less(order []string, a, b issue) bool {
	for i := 0; i < len(a.path) && i < len(b.path); i++ {
		ra, rb := segmentRank(order, a.path[i]), segmentRank(order, b.path[i])
		if ra != rb {
			return ra < rb
		}
	}
	if len(a.path) != len(b.path) {
		return len(a.path) < len(b.path)
	}
	return typeRank(a.err) < typeRank(b.err)
}

// segmentRank orders array indexes numerically and keys by declaration;
// unknown keys sort after every declared one.
func segmentRank(order []string, seg string) int {
	if n, err := strconv.Atoi(seg); err == nil {
		return n
	}
	for i, name := range order {
		if name == seg {
			return i
		}
	}
	return len(order)
}

func typeRank(e gojsonschema.ResultError) int {
	switch e.Type() {
	case "required":
		return 0
	case "invalid_type":
		return 1
	case "string_gte":
		if s, ok := e.Value().(string); ok && s == "" {
			return 2
		}
	}
	return 3
}

// label renders a path the way clients see it: references[0].ref_link.
func label(path []string) string {
	if len(path) == 0 {
		return rootLabel
	}
	var b strings.Builder
	for i, seg := range path {
		if _, err := strconv.Atoi(seg); err == nil && i > 0 {
			b.WriteString("[" + seg + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func quote(s string) string {
	return `"` + s + `"`
}

func message(is issue) string {
	name := quote(label(is.path))
	details := is.err.Details()

	switch is.err.Type() {
	case "required":
		return name + " is required"
	case "additional_property_not_allowed":
		return name + " is not allowed"
	case "invalid_type":
		return name + typeMessage(details["expected"], details["given"])
	case "format":
		if details["format"] == "email" {
			return name + " must be a valid email"
		}
		return name + " must be a valid " + fmt.Sprint(details["format"])
	case "string_gte":
		if s, ok := is.err.Value().(string); ok && s == "" {
			return name + " is not allowed to be empty"
		}
		return fmt.Sprintf("%s length must be at least %v characters long", name, details["min"])
	case "string_lte":
		return fmt.Sprintf("%s length must be less than or equal to %v characters long", name, details["max"])
	case "number_gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", name, bound(details["min"]))
	case "number_lte":
		return fmt.Sprintf("%s must be less than or equal to %s", name, bound(details["max"]))
	}
	return name + " " + is.err.Description()
}

// bound renders a numeric schema limit without a fractional part when it
// is integral.
func bound(v any) string {
	switch b := v.(type) {
	case *big.Rat:
		return b.RatString()
	case *big.Float:
		return b.Text('f', -1)
	case float64:
		return strconv.FormatFloat(b, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func typeMessage(expected, given any) string {
	switch fmt.Sprint(expected) {
	case "string":
		return " must be a string"
	case "integer":
		if fmt.Sprint(given) == "number" {
			return " must be an integer"
		}
		return " must be a number"
	case "number":
		return " must be a number"
	case "array":
		return " must be an array"
	case "object":
		return " must be of type object"
	case "boolean":
		return " must be a boolean"
	}
	return " must be of type " + fmt.Sprint(expected)
}
