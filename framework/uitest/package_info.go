// Package uitest provides a test runner for UI test suites that run outside of
// "go test": test scopes similar to testing.T, test identifiers and regex filters,
// result accumulation, and pluggable test output (console and JUnit XML).
package uitest
