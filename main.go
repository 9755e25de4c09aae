package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/travelguide/crud-contract-tests/crudtests"
	"github.com/travelguide/crud-contract-tests/framework"
	"github.com/travelguide/crud-contract-tests/framework/harness"
)

func main() {
	var params commandParams
	if !params.Read(os.Args, os.Stderr) {
		os.Exit(1)
	}
	os.Exit(run(&params, os.Args[0], os.Stdout))
}

func run(params *commandParams, program string, out io.Writer) int {
	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(out, "", log.LstdFlags)
	}
	executor := harness.NewExecutor(nil, params.timeout, mainDebugLogger)

	var auth harness.Authenticator
	if params.token != "" {
		auth = harness.StaticToken(params.token)
	} else {
		auth = harness.LoginAuthenticator{BaseURL: params.serviceURL, LoginPath: params.loginPath, Executor: executor}
	}
	creds := harness.Credentials{Identity: params.user, Secret: params.password}

	// fail once up front instead of once per test if the credentials are wrong
	if _, err := harness.OpenSession(context.Background(), params.serviceURL, auth, creds); err != nil {
		fmt.Fprintf(out, "Setup failed: %s\n", err)
		return 1
	}

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, params.filters)

	fmt.Fprintf(out, "Running test suite against %s\n", params.serviceURL)

	testLogger := &ConsoleTestLogger{
		Out:                  out,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
		Verbose:              params.debugAll,
	}
	config := crudtests.Config{
		BaseURL:       params.serviceURL,
		Executor:      executor,
		Authenticator: auth,
		Credentials:   creds,
		Parallel:      params.parallel,
		Payloads:      params.payloads,
		Fixtures:      params.fixtures,
	}

	results := crudtests.RunTestSuite(config, params.filters.AsFilter, testLogger)

	fmt.Fprintln(out)
	framework.PrintResults(out, results)
	if !results.OK() {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To run only the failed tests again:")
		fmt.Fprintf(out, "  %s\n", params.rerunCommand(program, results.FailedIDs()))
		return 1
	}
	return 0
}
