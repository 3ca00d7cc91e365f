// Package suites contains the UI test suites the harness runs against the
// configured target: a web suite exercising pages through the browser driver,
// and a mobile suite exercising screens through an Appium-compatible server.
package suites

import (
	"github.com/qaforge/uiharness/config"
	"github.com/qaforge/uiharness/driver"
	"github.com/qaforge/uiharness/framework/uitest"
	"github.com/qaforge/uiharness/page"
	"github.com/qaforge/uiharness/report"
)

// SuiteContext is the application-defined context value that all tests in the
// suite can access through the test scope. It carries the validated
// configuration, the shared driver session, and the step recorder.
type SuiteContext struct {
	config   config.Configuration
	driver   driver.Driver
	recorder *report.Recorder
}

func NewSuiteContext(
	cfg config.Configuration,
	drv driver.Driver,
	recorder *report.Recorder,
) SuiteContext {
	return SuiteContext{config: cfg, driver: drv, recorder: recorder}
}

func (c SuiteContext) Config() config.Configuration { return c.config }

func (c SuiteContext) Driver() driver.Driver { return c.driver }

func (c SuiteContext) Recorder() *report.Recorder { return c.recorder }

// NewPage creates a page object base bound to the suite's driver session, with
// debug output going to the current test scope.
func (c SuiteContext) NewPage(t *uitest.T) page.Page {
	return page.New(c.driver, t.DebugLogger(), c.config.Timeout)
}

func requireContext(t *uitest.T) SuiteContext {
	if c, ok := t.Context().(SuiteContext); ok {
		return c
	}
	panic("test was run without suite context; tests must only be run from RunUITestSuite")
}
