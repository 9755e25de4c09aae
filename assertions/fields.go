package assertions

import (
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Field looks up a field in a JSON object. A dotted path such as "category._id" descends into
// nested objects. A field that is present with a null value is returned as null; a field that
// is not there at all is a *MissingFieldError.
func Field(record ldvalue.Value, path string) (ldvalue.Value, error) {
	current := record
	for _, key := range strings.Split(path, ".") {
		if current.Type() != ldvalue.ObjectType {
			return ldvalue.Null(), &MissingFieldError{Field: path, Record: describe(record)}
		}
		next, ok := current.TryGetByKey(key)
		if !ok {
			return ldvalue.Null(), &MissingFieldError{Field: path, Record: describe(record)}
		}
		current = next
	}
	return current, nil
}

// StringField returns the string representation of a field (see Representation).
func StringField(record ldvalue.Value, path string) (string, error) {
	v, err := Field(record, path)
	if err != nil {
		return "", err
	}
	return Representation(v), nil
}

// ArrayField returns a field that must be a JSON array.
func ArrayField(record ldvalue.Value, path string) (ldvalue.Value, error) {
	v, err := Field(record, path)
	if err != nil {
		return v, err
	}
	if err := IsArray(v, path); err != nil {
		return v, err
	}
	return v, nil
}

// ObjectField returns a field that must be a JSON object.
func ObjectField(record ldvalue.Value, path string) (ldvalue.Value, error) {
	v, err := Field(record, path)
	if err != nil {
		return v, err
	}
	if err := IsObject(v, path); err != nil {
		return v, err
	}
	return v, nil
}

// Representation is how a value compares against a literal: strings as their content, null as
// an empty string, and everything else as its JSON encoding.
func Representation(v ldvalue.Value) string {
	switch v.Type() {
	case ldvalue.StringType:
		return v.StringValue()
	case ldvalue.NullType:
		return ""
	default:
		return v.JSONString()
	}
}

// Elements returns the items of an array value.
func Elements(v ldvalue.Value) []ldvalue.Value {
	if v.Type() != ldvalue.ArrayType {
		return nil
	}
	ret := make([]ldvalue.Value, 0, v.Count())
	for i := 0; i < v.Count(); i++ {
		ret = append(ret, v.GetByIndex(i))
	}
	return ret
}

const maxDescribedLength = 200

func describe(v ldvalue.Value) string {
	s := v.JSONString()
	if len(s) > maxDescribedLength {
		s = s[:maxDescribedLength] + "..."
	}
	return s
}
