package assertions

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func stringArray(ss []string) ldvalue.Value {
	b := ldvalue.ArrayBuild()
	for _, s := range ss {
		b.Add(ldvalue.String(s))
	}
	return b.Build()
}

func TestElementsEqualProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("an array equals itself", prop.ForAll(
		func(ss []string) bool {
			return ElementsEqual("a", stringArray(ss), stringArray(ss)) == nil
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("appending an element breaks equality", prop.ForAll(
		func(ss []string, extra string) bool {
			return ElementsEqual("a", stringArray(ss), stringArray(append(append([]string(nil), ss...), extra))) != nil
		},
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
	))

	properties.Property("swapping two different elements breaks equality", prop.ForAll(
		func(x, y string) bool {
			if x == y {
				return true
			}
			return ElementsEqual("a", stringArray([]string{x, y}), stringArray([]string{y, x})) != nil
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestFieldEqualsRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("a submitted string is found by FieldEquals", prop.ForAll(
		func(s string) bool {
			record := ldvalue.ObjectBuild().Set("name", ldvalue.String(s)).Build()
			return FieldEquals(ldvalue.Parse([]byte(record.JSONString())), "name", s) == nil
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
