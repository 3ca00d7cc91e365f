package report

import (
	"errors"
	"os"
	"testing"

	"github.com/qaforge/uiharness/config"
	"github.com/qaforge/uiharness/driver"
	"github.com/qaforge/uiharness/framework"
	"github.com/qaforge/uiharness/framework/uitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diagnosticFakeDriver supports just enough of the driver contract to exercise
// failure-time capture.
type diagnosticFakeDriver struct {
	capabilities  framework.Capabilities
	screenshotErr error
}

func (d *diagnosticFakeDriver) Platform() config.Platform { return config.PlatformWeb }
func (d *diagnosticFakeDriver) SessionID() string         { return "session1" }
func (d *diagnosticFakeDriver) Capabilities() framework.Capabilities {
	return d.capabilities
}
func (d *diagnosticFakeDriver) Navigate(string) error { return nil }
func (d *diagnosticFakeDriver) Find(locator driver.Locator) (driver.Element, error) {
	return nil, &driver.ActionError{Kind: driver.KindLocatorNotFound, Action: "find " + locator.String()}
}
func (d *diagnosticFakeDriver) FindAll(driver.Locator) ([]driver.Element, error) { return nil, nil }
func (d *diagnosticFakeDriver) Title() (string, error)                           { return "", nil }
func (d *diagnosticFakeDriver) CurrentURL() (string, error)                      { return "", nil }
func (d *diagnosticFakeDriver) PageSource() (string, error) {
	return "<html><body>failure state</body></html>", nil
}
func (d *diagnosticFakeDriver) Screenshot() ([]byte, error) {
	if d.screenshotErr != nil {
		return nil, d.screenshotErr
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}
func (d *diagnosticFakeDriver) Close() error { return nil }

func fullyCapableDriver() *diagnosticFakeDriver {
	return &diagnosticFakeDriver{
		capabilities: framework.Capabilities{
			driver.CapabilityScreenshots, driver.CapabilityPageSource,
		},
	}
}

func newTestRecorder(t *testing.T, d driver.Driver) *Recorder {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return NewRecorder(d, store)
}

func TestTrySuccessCapturesNothing(t *testing.T) {
	r := newTestRecorder(t, fullyCapableDriver())

	err := r.Try(framework.NullLogger(), "do the thing", func() error { return nil })
	assert.Nil(t, err)

	entries, readErr := os.ReadDir(r.store.Dir())
	require.NoError(t, readErr)
	assert.Len(t, entries, 0)
}

func TestTryFailureCapturesDiagnostics(t *testing.T) {
	r := newTestRecorder(t, fullyCapableDriver())

	actionErr := r.Try(framework.NullLogger(), "click the button", func() error {
		return &driver.ActionError{Kind: driver.KindTimeout, Action: "wait for button"}
	})
	require.NotNil(t, actionErr)
	assert.Equal(t, driver.KindTimeout, actionErr.Kind)

	// one screenshot and one page source, both on disk
	require.Len(t, actionErr.Attachments, 2)
	for _, path := range actionErr.Attachments {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}

func TestTryNormalizesPlainErrors(t *testing.T) {
	r := newTestRecorder(t, fullyCapableDriver())

	actionErr := r.Try(framework.NullLogger(), "assert greeting", func() error {
		return errors.New("wrong greeting text")
	})
	require.NotNil(t, actionErr)
	assert.Equal(t, driver.KindActionFailed, actionErr.Kind)
	assert.Equal(t, "assert greeting", actionErr.Action)
}

func TestTrySkipsCapturesTheDriverCannotDo(t *testing.T) {
	d := &diagnosticFakeDriver{capabilities: framework.Capabilities{driver.CapabilityPageSource}}
	r := newTestRecorder(t, d)

	actionErr := r.Try(framework.NullLogger(), "click", func() error {
		return errors.New("boom")
	})
	require.NotNil(t, actionErr)
	require.Len(t, actionErr.Attachments, 1)
	assert.Contains(t, actionErr.Attachments[0], string(AttachmentPageSource))
}

func TestTrySwallowsCaptureFailures(t *testing.T) {
	d := fullyCapableDriver()
	d.screenshotErr = errors.New("session is gone")
	r := newTestRecorder(t, d)

	var logged framework.CapturingLogger
	actionErr := r.Try(&logged, "click", func() error {
		return errors.New("boom")
	})

	// the action's own error survives; only the page source was attached
	require.NotNil(t, actionErr)
	assert.Equal(t, driver.KindActionFailed, actionErr.Kind)
	require.Len(t, actionErr.Attachments, 1)

	foundReport := false
	for _, m := range logged.Output() {
		if m.Message == "Screenshot capture failed: session is gone" {
			foundReport = true
		}
	}
	assert.True(t, foundReport, "capture failure should have been logged")
}

func TestStepFailsTheTestScope(t *testing.T) {
	r := newTestRecorder(t, fullyCapableDriver())

	executedAfterFailure := false
	results := uitest.Run(uitest.TestConfiguration{}, func(ut *uitest.T) {
		ut.Run("failing step", func(ut0 *uitest.T) {
			r.Step(ut0, "click the button", func() error {
				return errors.New("no button")
			})
			executedAfterFailure = true
		})
	})

	assert.False(t, results.OK())
	assert.False(t, executedAfterFailure)
	require.Len(t, results.Failures, 1)
	require.NotEmpty(t, results.Failures[0].Errors)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "no button")
}

func TestStepSuccessDoesNotFailTheTestScope(t *testing.T) {
	r := newTestRecorder(t, fullyCapableDriver())

	results := uitest.Run(uitest.TestConfiguration{}, func(ut *uitest.T) {
		ut.Run("passing step", func(ut0 *uitest.T) {
			r.Step(ut0, "click the button", func() error { return nil })
		})
	})
	assert.True(t, results.OK())
}
