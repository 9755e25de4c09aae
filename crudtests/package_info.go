// Package crudtests contains the lifecycle contract tests for the travel guide service's
// resources, and the T type they are written against.
//
// The machinery for running a single lifecycle is in the lifecycle package; the HTTP and
// authentication layer is in framework/harness. This package decides which lifecycles to run,
// with which payloads and options, and turns their outcomes into test results.
package crudtests
