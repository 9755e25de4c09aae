package assertions

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/travelguide/crud-contract-tests/framework/harness"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Check is a deferred assertion, so that a list of them can stop at the first failure.
type Check func() error

// All runs checks in order and returns the first failure.
func All(checks ...Check) error {
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

// Status checks that the response status is one of the expected codes.
func Status(r harness.StepResult, expected ...int) error {
	for _, e := range expected {
		if r.StatusCode == e {
			return nil
		}
	}
	var codes []string
	for _, e := range expected {
		codes = append(codes, fmt.Sprint(e))
	}
	return &AssertionError{
		Expected: "status " + strings.Join(codes, " or "),
		Actual:   fmt.Sprintf("status %d", r.StatusCode),
		Detail:   "response body: " + truncate(r.RawBody),
	}
}

// BodyNotEmpty checks that the response has some content.
func BodyNotEmpty(r harness.StepResult) error {
	if !r.HasBody() {
		return &AssertionError{Expected: "a response body", Actual: "an empty body"}
	}
	return nil
}

// IsObject checks that a value is a JSON object.
func IsObject(v ldvalue.Value, what string) error {
	if v.Type() != ldvalue.ObjectType {
		return failf(what, "a JSON object", "%s %s", v.Type(), describe(v))
	}
	return nil
}

// IsArray checks that a value is a JSON array.
func IsArray(v ldvalue.Value, what string) error {
	if v.Type() != ldvalue.ArrayType {
		return failf(what, "a JSON array", "%s %s", v.Type(), describe(v))
	}
	return nil
}

// MinLength checks that a value is an array with at least min elements.
func MinLength(v ldvalue.Value, what string, min int) error {
	if err := IsArray(v, what); err != nil {
		return err
	}
	if v.Count() < min {
		return failf(what, fmt.Sprintf("at least %d element(s)", min), "%d", v.Count())
	}
	return nil
}

// FieldPresent checks that a record has a field, whatever its value.
func FieldPresent(record ldvalue.Value, field string) error {
	_, err := Field(record, field)
	return err
}

// NonEmptyString checks that a field is present and has a non-empty string representation.
// A null value counts as empty.
func NonEmptyString(record ldvalue.Value, field string) error {
	s, err := StringField(record, field)
	if err != nil {
		return err
	}
	if s == "" {
		return failf(field, "a non-empty value", "%q", s)
	}
	return nil
}

// FieldEquals checks that the string representation of a field is exactly the expected
// literal. Numbers compare by their JSON encoding, so 5 and "5" are equal.
func FieldEquals(record ldvalue.Value, field string, expected string) error {
	s, err := StringField(record, field)
	if err != nil {
		return err
	}
	if s != expected {
		return failf(field, fmt.Sprintf("%q", expected), "%q", s)
	}
	return nil
}

// ValueEquals checks that a field holds exactly the expected JSON value, type included, so a
// string that comes back as a number or as null does not match. Arrays are compared with
// ElementsEqual.
func ValueEquals(record ldvalue.Value, field string, expected ldvalue.Value) error {
	if expected.Type() == ldvalue.ArrayType {
		actual, err := ArrayField(record, field)
		if err != nil {
			return err
		}
		return ElementsEqual(field, expected, actual)
	}
	actual, err := Field(record, field)
	if err != nil {
		return err
	}
	if !actual.Equal(expected) {
		return failf(field, expected.JSONString(), "%s", actual.JSONString())
	}
	return nil
}

// ElementsEqual checks that two arrays have the same length and that their elements are equal
// position by position, type included. Order matters: a service that reorders arrays fails this
// check.
func ElementsEqual(field string, expected, actual ldvalue.Value) error {
	if err := IsArray(actual, field); err != nil {
		return err
	}
	want, got := Elements(expected), Elements(actual)
	if len(want) != len(got) {
		return &AssertionError{
			Field:    field,
			Expected: fmt.Sprintf("%d element(s)", len(want)),
			Actual:   fmt.Sprintf("%d", len(got)),
			Detail:   arrayDiff(want, got),
		}
	}
	for i := range want {
		if !want[i].Equal(got[i]) {
			return &AssertionError{
				Field:    fmt.Sprintf("%s[%d]", field, i),
				Expected: want[i].JSONString(),
				Actual:   got[i].JSONString(),
				Detail:   arrayDiff(want, got),
			}
		}
	}
	return nil
}

// Absent checks the result of reading a resource that should no longer exist. A not-found
// status, an empty body, or a literal null body are all accepted; any other status, or a body
// containing something other than null, is a failure.
func Absent(r harness.StepResult) error {
	if r.StatusCode == http.StatusNotFound || r.StatusCode == http.StatusGone {
		return nil
	}
	if r.StatusCode != http.StatusOK && r.StatusCode != http.StatusNoContent {
		return &AssertionError{
			Expected: "an absent resource (status 404, or an empty or null body)",
			Actual:   fmt.Sprintf("status %d", r.StatusCode),
			Detail:   "response body: " + truncate(r.RawBody),
		}
	}
	body := strings.TrimSpace(r.RawBody)
	if body == "" || body == "null" {
		return nil
	}
	return &AssertionError{
		Expected: "an absent resource (empty or null body)",
		Actual:   truncate(body),
	}
}

// FindByField returns the first element of an array whose field has the given representation.
func FindByField(list ldvalue.Value, field, value string) (ldvalue.Value, bool) {
	for _, item := range Elements(list) {
		if s, err := StringField(item, field); err == nil && s == value {
			return item, true
		}
	}
	return ldvalue.Null(), false
}

// CountByField returns the number of array elements whose field has the given representation.
func CountByField(list ldvalue.Value, field, value string) int {
	n := 0
	for _, item := range Elements(list) {
		if s, err := StringField(item, field); err == nil && s == value {
			n++
		}
	}
	return n
}

func arrayDiff(want, got []ldvalue.Value) string {
	toStrings := func(vs []ldvalue.Value) []string {
		ret := make([]string, 0, len(vs))
		for _, v := range vs {
			ret = append(ret, v.JSONString())
		}
		return ret
	}
	return "diff (-expected +actual):\n" + cmp.Diff(toStrings(want), toStrings(got))
}

func truncate(s string) string {
	if len(s) > maxDescribedLength {
		return s[:maxDescribedLength] + "..."
	}
	return s
}
