package crudtests

import (
	"context"

	"github.com/travelguide/crud-contract-tests/framework"
	"github.com/travelguide/crud-contract-tests/framework/harness"
	"github.com/travelguide/crud-contract-tests/lifecycle"

	"github.com/stretchr/testify/require"
)

// Config is everything the suite needs to know about the service under test.
type Config struct {
	BaseURL       string
	Executor      *harness.Executor
	Authenticator harness.Authenticator
	Credentials   harness.Credentials
	// Parallel is the maximum number of lifecycle runs in progress at once. Zero or less means
	// one at a time.
	Parallel int
	Payloads Payloads
	// Fixtures are destinations that the service is expected to have been deployed with. If
	// there are none, the fixture tests are skipped.
	Fixtures []Fixture
}

type environment struct {
	config   Config
	category *lifecycle.Resource
	dest     *lifecycle.Resource
}

// T represents a test or subtest in the contract test suite.
//
// Like the lower-level framework.Context it wraps, it can be passed to the assert and require
// packages as if it were a *testing.T. Each T lazily opens its own Session, so tests that run in
// parallel never share a token.
type T struct {
	context *framework.Context
	env     *environment
	session *harness.Session
}

func newTestScope(c *framework.Context, env *environment) *T {
	return &T{context: c, env: env}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest and waits for it.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

// Subtest is a named test for RunParallel.
type Subtest struct {
	Name   string
	Action func(*T)
}

// RunParallel runs subtests concurrently, up to the configured parallelism.
func (t *T) RunParallel(tests ...Subtest) {
	pts := make([]framework.ParallelTest, 0, len(tests))
	for _, st := range tests {
		action := st.Action
		pts = append(pts, framework.ParallelTest{
			Name: st.Name,
			Action: func(c *framework.Context) {
				action(newTestScope(c, t.env))
			},
		})
	}
	limit := t.env.config.Parallel
	if limit < 1 {
		limit = 1
	}
	t.context.RunParallel(limit, pts...)
}

// Debug logs some debug output for the test, shown at the end of the test if debugging is on.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Skip stops the test and reports it as skipped.
func (t *T) Skip(reason string) {
	t.context.SkipWithReason(reason)
}

// Session returns the test's Session, authenticating the first time it is called. A failure to
// authenticate fails the test immediately.
func (t *T) Session() harness.Session {
	if t.session == nil {
		s, err := harness.OpenSession(context.Background(), t.env.config.BaseURL, t.env.config.Authenticator,
			t.env.config.Credentials)
		require.NoError(t, err, "could not authenticate")
		t.Debug("authenticated as %q", t.env.config.Credentials.Identity)
		t.session = &s
	}
	return *t.session
}

func (t *T) executor() *harness.Executor {
	return t.env.config.Executor.WithLogger(t.context.DebugLogger())
}

// RunLifecycle takes a resource through its lifecycle with this test's Session, and fails the
// test immediately if the run does not reach the end.
func (t *T) RunLifecycle(resource *lifecycle.Resource, options lifecycle.Options) lifecycle.Outcome {
	r := &lifecycle.Runner{
		Executor: t.executor(),
		Session:  t.Session(),
		Logger:   t.context.DebugLogger(),
		Options:  options,
	}
	var outcome lifecycle.Outcome
	t.context.Defer(func() {
		// a failed run never reached a confirmed deletion
		if outcome.Err != nil && outcome.Context != nil && outcome.Context.ID != "" {
			t.Debug("%s %s may have been left behind on the service", resource.Name, outcome.Context.ID)
		}
	})
	outcome = r.Run(context.Background(), resource)
	if outcome.Err != nil {
		t.Errorf("%s: %s", outcome.Kind(), outcome.Err)
		t.FailNow()
	}
	return outcome
}

// Get reads a path with this test's Session and requires a 200 response.
func (t *T) Get(path string) harness.StepResult {
	result, err := t.executor().Get(context.Background(), t.Session(), path)
	require.NoError(t, err)
	require.Equal(t, 200, result.StatusCode, "unexpected status for GET %s: %s", path, result)
	return result
}
