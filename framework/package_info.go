// Package framework contains the low-level implementation of test harness infrastructure
// that has no knowledge of UI automation specifics. The base package contains shared
// types such as Logger; other components are in the subpackages uitest, opt, and helpers.
//
// The general model is:
//
// 1. The harness owns a single automation session (a browser or a mobile device) which
// it creates from configuration before any test runs and tears down afterward.
//
// 2. There is a general notion of a test context which is similar to Go's testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results.
//
// 3. Output produced while a test scope is active is captured per scope, so the runner
// can decide after the fact whether to display it.
//
// The domain-specific code that knows what is being tested lives in the page, report,
// and suites packages, layered on top of the driver abstraction.
package framework
