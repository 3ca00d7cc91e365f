package driver

import (
	"fmt"

	"github.com/qaforge/uiharness/config"
	"github.com/qaforge/uiharness/framework"
)

// New constructs an automation driver for the configured platform. The returned
// driver owns a live external session; callers must arrange for Close to run at
// teardown. Failure to start the session is an *InitializationError.
func New(cfg config.Configuration, logger framework.Logger) (Driver, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	switch cfg.Platform {
	case config.PlatformWeb:
		return newWebDriver(cfg, logger)
	case config.PlatformMobile:
		return newMobileDriver(cfg, logger)
	default:
		// Load validates the platform, so this only happens with a hand-built
		// Configuration.
		return nil, &InitializationError{
			Platform: cfg.Platform,
			Err:      fmt.Errorf("unrecognized platform %q", cfg.Platform),
		}
	}
}
