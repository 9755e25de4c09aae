package framework

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SkippedByFilter is the reason given to TestLogger.TestSkipped for tests that the filter excluded.
const SkippedByFilter = "excluded by filter parameters"

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
	lock       sync.Mutex
}

// Context is the harness equivalent of *testing.T. It implements require.TestingT, so the
// assert and require packages can be used with it directly.
//
// A Context is owned by one goroutine. Subtests started with RunParallel get their own
// Context each, so nothing in a Context needs locking except the shared environment.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	deferred    []func()
}

// ParallelTest is a named subtest for RunParallel.
type ParallelTest struct {
	Name   string
	Action func(*Context)
}

func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if !c.skipped {
				c.failed = true
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.errors = append(c.errors, addError)
					c.env.testLogger.TestError(c.id, addError)
				}
			}
		}
		for i := len(c.deferred) - 1; i >= 0; i-- {
			c.deferred[i]()
		}
		c.deferred = nil
		if len(c.id.Path) == 0 {
			return // the root context is not a test
		}
		result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped}
		c.env.lock.Lock()
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
		c.env.lock.Unlock()
	}()

	action(c)
}

func (c *Context) ID() TestID {
	return c.id
}

// Run runs a subtest, blocking until it finishes.
func (c *Context) Run(name string, action func(*Context)) {
	if c1 := c.startSubtest(name); c1 != nil {
		c1.run(action)
		c.finishSubtest(c1)
	}
}

// RunParallel runs the given subtests concurrently, with at most maxConcurrent of them active
// at once (zero or less means no limit), and returns when all of them have finished. A failure
// in one subtest does not stop the others.
func (c *Context) RunParallel(maxConcurrent int, tests ...ParallelTest) {
	g, _ := errgroup.WithContext(context.Background())
	if maxConcurrent > 0 {
		g.SetLimit(maxConcurrent)
	}
	for _, pt := range tests {
		pt := pt
		c1 := c.startSubtest(pt.Name)
		if c1 == nil {
			continue
		}
		g.Go(func() error {
			c1.run(pt.Action)
			c.finishSubtest(c1)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Context) startSubtest(name string) *Context {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, SkippedByFilter)
		return nil
	}
	return &Context{
		id:  id,
		env: c.env,
	}
}

func (c *Context) finishSubtest(c1 *Context) {
	if c1.skipped {
		c.env.testLogger.TestSkipped(c1.id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(c1.id, c1.failed, c1.debugLogger.Output())
	}
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a function to run when the current test ends, whether it passed or not.
// Deferred functions run in reverse order.
func (c *Context) Defer(fn func()) {
	c.deferred = append(c.deferred, fn)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// testify's assertion messages start with a blank line and use tab indentation, which looks
// odd in the console output.
func reformatError(err error) error {
	s := strings.TrimLeft(err.Error(), "\n")
	s = strings.ReplaceAll(s, "\t", "  ")
	return errors.New(s)
}
