// Package framework contains the test-runner infrastructure of the contract tests that is not
// specific to any resource type.
//
// The general model is:
//
// 1. There is a notion of a test context, Context, which is similar to Go's testing.T. It
// associates pieces of test logic with a hierarchical test identifier, accumulates failures,
// and captures debug output that is only shown if requested.
//
// 2. Tests can be selected or excluded with regex filters on their identifiers.
//
// 3. Independent tests can run concurrently with RunParallel; everything else runs in order.
//
// Talking to the service under test is done by the harness subpackage. The resource-specific
// logic lives in higher-level packages.
package framework
