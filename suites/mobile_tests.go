package suites

import (
	"github.com/qaforge/uiharness/driver"
	"github.com/qaforge/uiharness/framework/uitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Locators for the screen the mobile suite runs against. The self-test app
// (mockapp.DemoScreen) provides these; a real app under test must expose the
// same identifiers for the suite to apply.
var (
	mobileHeading    = driver.AccessibilityID("app-heading")
	mobileUsername   = driver.ID("username-field")
	mobileHidden     = driver.ID("hidden-banner")
	mobileDragSource = driver.ID("drag-source")
	mobileDropTarget = driver.ID("drop-target")
)

func doMobileSessionTests(t *uitest.T) {
	ctx := requireContext(t)

	t.Run("has a session id", func(t *uitest.T) {
		assert.NotEqual(t, "", ctx.Driver().SessionID())
	})

	t.Run("reports the screen title", func(t *uitest.T) {
		title, err := ctx.Driver().Title()
		require.NoError(t, err)
		assert.NotEqual(t, "", title)
	})

	t.Run("reports the view hierarchy", func(t *uitest.T) {
		t.RequireCapability(driver.CapabilityPageSource)
		_, err := ctx.Driver().PageSource()
		require.NoError(t, err)
	})
}

func doMobileElementTests(t *uitest.T) {
	ctx := requireContext(t)
	p := ctx.NewPage(t)

	t.Run("finds an element by accessibility id", func(t *uitest.T) {
		el, err := p.Find(mobileHeading)
		require.NoError(t, err)

		text, err := el.Text()
		require.NoError(t, err)
		assert.NotEqual(t, "", text)
	})

	t.Run("types into a field and reads it back", func(t *uitest.T) {
		ctx.Recorder().Step(t, "type into username field", func() error {
			return p.Type(mobileUsername, "qa")
		})
		text, err := p.Text(mobileUsername)
		require.NoError(t, err)
		assert.Equal(t, "qa", text)
	})

	t.Run("reports a hidden element as not visible", func(t *uitest.T) {
		el, err := p.Find(mobileHidden)
		require.NoError(t, err)

		visible, err := el.Visible()
		require.NoError(t, err)
		assert.False(t, visible)
	})

	t.Run("classifies a missing element", func(t *uitest.T) {
		_, err := ctx.Driver().Find(driver.AccessibilityID("no-such-view"))
		require.Error(t, err)

		actionErr := driver.AsActionError("find", err)
		assert.Equal(t, driver.KindLocatorNotFound, actionErr.Kind)
	})
}

func doMobileGestureTests(t *uitest.T) {
	t.RequireCapability(driver.CapabilityGestures)
	ctx := requireContext(t)

	gestures, ok := ctx.Driver().(driver.Gestures)
	require.True(t, ok, "driver reports the gestures capability but does not implement them")

	t.Run("double tap", func(t *uitest.T) {
		ctx.Recorder().Step(t, "double tap heading", func() error {
			return gestures.DoubleTap(mobileHeading)
		})
	})

	t.Run("drag and drop", func(t *uitest.T) {
		ctx.Recorder().Step(t, "drag source onto target", func() error {
			return gestures.DragAndDrop(mobileDragSource, mobileDropTarget)
		})
	})
}

func doMobileDiagnosticsTests(t *uitest.T) {
	ctx := requireContext(t)

	t.Run("captures a screenshot", func(t *uitest.T) {
		t.RequireCapability(driver.CapabilityScreenshots)
		data, err := ctx.Driver().Screenshot()
		require.NoError(t, err)
		require.Greater(t, len(data), 8)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[0:4])
	})
}
