package framework

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testIDs(results []TestResult) []string {
	var ret []string
	for _, r := range results {
		ret = append(ret, r.TestID.String())
	}
	return ret
}

func TestPassingAndFailingSubtests(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("a", func(c *Context) {})
		c.Run("b", func(c *Context) {
			assert.Equal(c, 1, 2)
		})
		c.Run("c", func(c *Context) {
			require.NoError(c, errors.New("sorry"))
			c.Errorf("not reached")
		})
	})

	assert.ElementsMatch(t, []string{"a", "b", "c"}, testIDs(results.Tests))
	assert.ElementsMatch(t, []string{"b", "c"}, testIDs(results.Failures))
	require.Len(t, results.Failures, 2)
	for _, f := range results.Failures {
		if f.TestID.String() == "c" {
			require.Len(t, f.Errors, 1)
			assert.Contains(t, f.Errors[0].Error(), "sorry")
		}
	}
	assert.False(t, results.OK())
}

func TestUnexpectedPanicIsRecordedAsFailure(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("boom", func(c *Context) {
			panic("oops")
		})
	})
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "unexpected panic in test: oops")
}

func TestSkippedTestIsNotAFailure(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("skipper", func(c *Context) {
			c.SkipWithReason("no fixtures")
		})
	})
	assert.True(t, results.OK())
	require.Len(t, results.Tests, 1)
	assert.True(t, results.Tests[0].Skipped)
}

func TestFilterExcludesTests(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("^b$"))
	ran := map[string]bool{}
	Run(filters.AsFilter, nil, func(c *Context) {
		c.Run("a", func(c *Context) { ran["a"] = true })
		c.Run("b", func(c *Context) { ran["b"] = true })
	})
	assert.Equal(t, map[string]bool{"a": true}, ran)
}

func TestDeferredFunctionsRunInReverseOrderEvenOnFailure(t *testing.T) {
	var order []string
	Run(nil, nil, func(c *Context) {
		c.Run("x", func(c *Context) {
			c.Defer(func() { order = append(order, "first") })
			c.Defer(func() { order = append(order, "second") })
			c.FailNow()
		})
	})
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestRunParallelRunsAllSubtestsWithinLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	var active, maxActive int32
	action := func(c *Context) {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&active, -1)
	}
	failing := func(c *Context) {
		action(c)
		c.Errorf("bad")
	}

	results := Run(nil, nil, func(c *Context) {
		c.RunParallel(2,
			ParallelTest{Name: "one", Action: action},
			ParallelTest{Name: "two", Action: failing},
			ParallelTest{Name: "three", Action: action},
			ParallelTest{Name: "four", Action: action},
		)
	})

	assert.ElementsMatch(t, []string{"one", "two", "three", "four"}, testIDs(results.Tests))
	assert.Equal(t, []string{"two"}, testIDs(results.Failures))
	assert.LessOrEqual(t, maxActive, int32(2))
}

func TestFailedIDsReturnsOnlyLeaves(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("category", func(c *Context) {
			c.Run("lifecycle", func(c *Context) { c.Errorf("x") })
			c.Run("other", func(c *Context) {})
		})
		c.Run("destination", func(c *Context) { c.Errorf("y") })
	})
	var ids []string
	for _, id := range results.FailedIDs() {
		ids = append(ids, id.String())
	}
	// a parent with a failed child is not itself marked failed, since failures don't propagate
	assert.ElementsMatch(t, []string{"category/lifecycle", "destination"}, ids)
}
