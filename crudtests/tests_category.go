package crudtests

import (
	"github.com/travelguide/crud-contract-tests/assertions"
	"github.com/travelguide/crud-contract-tests/lifecycle"

	"github.com/stretchr/testify/require"
)

func DoCategoryTests(t *T) {
	t.Run("lifecycle", func(t *T) {
		outcome := t.RunLifecycle(t.env.category, lifecycle.Options{})
		t.Debug("category %s went through its whole lifecycle", outcome.Context.ID)
	})

	t.Run("list shape", func(t *T) {
		result := t.Get(t.env.category.Path)
		require.NoError(t, assertions.IsArray(result.Parsed, "category list"))
		for _, item := range assertions.Elements(result.Parsed) {
			require.NoError(t, lifecycle.CheckShape(t.env.category, item))
		}
	})

	t.Run("idempotent read", func(t *T) {
		t.RunLifecycle(t.env.category, lifecycle.Options{RepeatRead: true})
	})

	t.Run("deletion is final", func(t *T) {
		t.RunLifecycle(t.env.category, lifecycle.Options{AbsenceReads: 3})
	})
}
