package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/travelguide/crud-contract-tests/framework"

	"github.com/fatih/color"
)

var (
	failedLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	skippedLabel = color.New(color.FgYellow).SprintFunc()
	passedLabel  = color.New(color.FgGreen).SprintFunc()
	errorText    = color.New(color.FgRed).SprintFunc()
)

// ConsoleTestLogger writes test progress to the console. Tests can run in parallel, so output
// is serialized; lines from different tests may still interleave.
type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	Verbose              bool
	lock                 sync.Mutex
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	if !c.Verbose {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	fmt.Fprintf(c.Out, "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	fmt.Fprintf(c.Out, "[%s]\n", id)
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Out, "  %s\n", errorText(line))
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if failed {
		fmt.Fprintf(c.Out, "  %s: %s\n", failedLabel("FAILED"), id)
	} else if c.Verbose {
		fmt.Fprintf(c.Out, "  %s: %s\n", passedLabel("PASSED"), id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == framework.SkippedByFilter && !c.Verbose {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if reason == "" {
		fmt.Fprintf(c.Out, "  %s: %s\n", skippedLabel("SKIPPED"), id)
	} else {
		fmt.Fprintf(c.Out, "  %s: %s (%s)\n", skippedLabel("SKIPPED"), id, reason)
	}
}
