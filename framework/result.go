package framework

import (
	"fmt"
	"io"
	"strings"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// FailedIDs returns the IDs of failed tests that have no failed subtests of their own, so that
// a rerun selects only the leaves that actually broke.
func (r Results) FailedIDs() []TestID {
	var ret []TestID
	for _, f := range r.Failures {
		hasFailedChild := false
		for _, other := range r.Failures {
			if other.TestID.IsChildOf(f.TestID) {
				hasFailedChild = true
				break
			}
		}
		if !hasFailedChild {
			ret = append(ret, f.TestID)
		}
	}
	return ret
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// IsChildOf returns true if t is a subtest (at any depth) of parent.
func (t TestID) IsChildOf(parent TestID) bool {
	if len(t.Path) <= len(parent.Path) {
		return false
	}
	for i, p := range parent.Path {
		if t.Path[i] != p {
			return false
		}
	}
	return true
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

func PrintResults(out io.Writer, results Results) {
	if results.OK() {
		fmt.Fprintln(out, "All tests passed")
		return
	}
	fmt.Fprintf(out, "FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  * %s\n", f.TestID)
		for _, e := range f.Errors {
			for _, line := range strings.Split(e.Error(), "\n") {
				fmt.Fprintf(out, "    %s\n", line)
			}
		}
	}
}
