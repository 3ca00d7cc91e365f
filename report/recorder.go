// Package report implements the wrapper around individual test actions: it logs
// each step, and on failure captures diagnostics (screenshot and page source)
// while the automation session is still alive, then re-raises a normalized
// ActionError through the test scope.
package report

import (
	"github.com/qaforge/uiharness/driver"
	"github.com/qaforge/uiharness/framework"
	"github.com/qaforge/uiharness/framework/uitest"
)

// Recorder wraps test actions against one driver session. It never owns the
// session; teardown ordering is the caller's responsibility, and Step guarantees
// only that diagnostics are captured before it returns.
type Recorder struct {
	driver driver.Driver
	store  *Store
}

func NewRecorder(d driver.Driver, store *Store) *Recorder {
	return &Recorder{driver: d, store: store}
}

// Step runs one named test action. On success it logs a step event to the test
// scope. On failure it captures diagnostics, logs the failure with its attachment
// paths, and fails the test scope with the normalized error. Diagnostic capture
// failures are logged and swallowed; they never mask the action's own error.
func (r *Recorder) Step(t *uitest.T, name string, fn func() error) {
	t.Helper()
	if err := r.Try(t.DebugLogger(), name, fn); err != nil {
		t.Errorf("%s", err)
		t.FailNow()
	}
}

// Try is like Step but returns the normalized error instead of failing the test
// scope, for callers that expect the action to fail.
func (r *Recorder) Try(logger framework.Logger, name string, fn func() error) *driver.ActionError {
	if logger == nil {
		logger = framework.NullLogger()
	}
	logger.Printf("Step: %s", name)
	err := fn()
	if err == nil {
		logger.Printf("Step succeeded: %s", name)
		return nil
	}

	actionErr := driver.AsActionError(name, err)
	for _, a := range r.capture(logger) {
		actionErr.Attachments = append(actionErr.Attachments, a.Path)
	}
	logger.Printf("Step failed: %s (%s)", name, actionErr.Kind)
	return actionErr
}

// capture saves whatever diagnostics the session supports. It must run before
// the driver is torn down, which holds because Step runs synchronously inside
// the test scope and driver teardown is a scope cleanup.
func (r *Recorder) capture(logger framework.Logger) []Attachment {
	if r.store == nil || r.driver == nil {
		return nil
	}
	var ret []Attachment
	caps := r.driver.Capabilities()

	if caps.Has(driver.CapabilityScreenshots) {
		if data, err := r.driver.Screenshot(); err != nil {
			logger.Printf("Screenshot capture failed: %s", err)
		} else if a, err := r.store.Save(r.driver.SessionID(), AttachmentScreenshot, data); err != nil {
			logger.Printf("Screenshot save failed: %s", err)
		} else {
			attach(logger, a, "Saved failure screenshot")
			ret = append(ret, a)
		}
	}

	if caps.Has(driver.CapabilityPageSource) {
		if source, err := r.driver.PageSource(); err != nil {
			logger.Printf("Page source capture failed: %s", err)
		} else if a, err := r.store.Save(r.driver.SessionID(), AttachmentPageSource, []byte(source)); err != nil {
			logger.Printf("Page source save failed: %s", err)
		} else {
			attach(logger, a, "Saved failure page source")
			ret = append(ret, a)
		}
	}
	return ret
}

func attach(logger framework.Logger, a Attachment, message string) {
	if cl, ok := logger.(*framework.CapturingLogger); ok {
		cl.Attach(a.Path, "%s", message)
	} else {
		logger.Printf("%s: %s", message, a.Path)
	}
}
