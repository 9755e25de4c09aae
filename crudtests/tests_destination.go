package crudtests

import (
	"github.com/travelguide/crud-contract-tests/assertions"
	"github.com/travelguide/crud-contract-tests/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoDestinationTests(t *T) {
	t.Run("lifecycle", func(t *T) {
		outcome := t.RunLifecycle(t.env.dest, lifecycle.Options{})
		t.Debug("destination %s used category %s", outcome.Context.ID, outcome.Context.DependencyIDs["category"])
	})

	t.Run("list shape", func(t *T) {
		result := t.Get(t.env.dest.Path)
		require.NoError(t, assertions.MinLength(result.Parsed, "destination list", 1))
		for _, item := range assertions.Elements(result.Parsed) {
			assert.NoError(t, lifecycle.CheckShape(t.env.dest, item))
		}
	})

	t.Run("idempotent read", func(t *T) {
		t.RunLifecycle(t.env.dest, lifecycle.Options{RepeatRead: true})
	})

	t.Run("update leaves other fields unchanged", func(t *T) {
		t.RunLifecycle(t.env.dest, lifecycle.Options{CheckUnchangedFields: true})
	})

	t.Run("deletion is final", func(t *T) {
		t.RunLifecycle(t.env.dest, lifecycle.Options{AbsenceReads: 3})
	})

	t.Run("fixtures", doDestinationFixtureTests)
}

func doDestinationFixtureTests(t *T) {
	if len(t.env.config.Fixtures) == 0 {
		t.Skip("no fixtures configured")
	}
	for _, f := range t.env.config.Fixtures {
		fixture := f
		t.Run(fixture.Name, func(t *T) {
			result := t.Get(t.env.dest.Path)
			require.NoError(t, assertions.IsArray(result.Parsed, "destination list"))
			record, found := assertions.FindByField(result.Parsed, "name", fixture.Name)
			require.True(t, found, "no destination named %q in the list", fixture.Name)
			t.Debug("found %s", record.JSONString())

			for _, kv := range fixture.expectedFields() {
				assert.NoError(t, assertions.FieldEquals(record, kv[0], kv[1]))
			}
			if fixture.Attractions != nil {
				actual, err := assertions.ArrayField(record, "attractions")
				require.NoError(t, err)
				assert.NoError(t, assertions.ElementsEqual("attractions", stringArray(fixture.Attractions), actual))
			}
		})
	}
}
