package suites

import (
	"fmt"

	"github.com/qaforge/uiharness/config"
	"github.com/qaforge/uiharness/driver"
	"github.com/qaforge/uiharness/framework/uitest"
	"github.com/qaforge/uiharness/report"
)

// allCapabilities is every capability any test in the suites gates itself on,
// used to tell the user up front which tests their driver cannot run.
func allCapabilities() []string {
	return []string{
		driver.CapabilityNavigation,
		driver.CapabilityScreenshots,
		driver.CapabilityPageSource,
		driver.CapabilityGestures,
		driver.CapabilityFrames,
	}
}

// RunUITestSuite runs the test suite appropriate for the configured platform
// against an already-started driver session.
func RunUITestSuite(
	cfg config.Configuration,
	drv driver.Driver,
	recorder *report.Recorder,
	filters uitest.RegexFilters,
	testLogger uitest.TestLogger,
) uitest.Results {
	capabilities := drv.Capabilities()

	switch cfg.Platform {
	case config.PlatformWeb:
		fmt.Println("Running web UI test suite")
	case config.PlatformMobile:
		fmt.Println("Running mobile UI test suite")
	}
	fmt.Printf("Target: %s\n", cfg.Target)
	fmt.Println()

	uitest.PrintFilterDescription(filters, allCapabilities(), capabilities)

	testConfig := uitest.TestConfiguration{
		Filter:       filters.Match,
		TestLogger:   testLogger,
		Capabilities: capabilities,
		Context:      NewSuiteContext(cfg, drv, recorder),
	}

	return uitest.Run(testConfig, func(t *uitest.T) {
		switch cfg.Platform {
		case config.PlatformWeb:
			doAllWebTests(t)
		case config.PlatformMobile:
			doAllMobileTests(t)
		}
	})
}

func doAllWebTests(t *uitest.T) {
	t.Run("navigation", doWebNavigationTests)
	t.Run("elements", doWebElementTests)
	t.Run("waiting", doWebWaitTests)
	t.Run("gestures", doWebGestureTests)
	t.Run("frames", doWebFrameTests)
	t.Run("login", doWebLoginTests)
	t.Run("diagnostics", doWebDiagnosticsTests)
}

func doAllMobileTests(t *uitest.T) {
	t.Run("session", doMobileSessionTests)
	t.Run("elements", doMobileElementTests)
	t.Run("gestures", doMobileGestureTests)
	t.Run("diagnostics", doMobileDiagnosticsTests)
}
