package lifecycle

import "gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

// FieldValue is one top-level field of a request body.
type FieldValue struct {
	Name  string
	Value ldvalue.Value
}

// Payload is a JSON object body whose fields keep the order they were given in, so that the
// checks derived from it run in a predictable order.
type Payload []FieldValue

// Field is shorthand for building a Payload.
func Field(name string, value ldvalue.Value) FieldValue {
	return FieldValue{Name: name, Value: value}
}

// Get returns a field's value, or false if the payload does not have it.
func (p Payload) Get(name string) (ldvalue.Value, bool) {
	for _, f := range p {
		if f.Name == name {
			return f.Value, true
		}
	}
	return ldvalue.Null(), false
}

// Has returns true if the payload contains the field.
func (p Payload) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// With returns a copy of the payload with a field set, replacing any existing value.
func (p Payload) With(name string, value ldvalue.Value) Payload {
	ret := make(Payload, 0, len(p)+1)
	replaced := false
	for _, f := range p {
		if f.Name == name {
			ret = append(ret, FieldValue{Name: name, Value: value})
			replaced = true
		} else {
			ret = append(ret, f)
		}
	}
	if !replaced {
		ret = append(ret, FieldValue{Name: name, Value: value})
	}
	return ret
}

// AsValue converts the payload to a JSON object.
func (p Payload) AsValue() ldvalue.Value {
	b := ldvalue.ObjectBuild()
	for _, f := range p {
		b.Set(f.Name, f.Value)
	}
	return b.Build()
}

func (p Payload) MarshalJSON() ([]byte, error) {
	return p.AsValue().MarshalJSON()
}
