package driver

import (
	"errors"
	"testing"

	"github.com/qaforge/uiharness/config"
	"github.com/qaforge/uiharness/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnrecognizedPlatform(t *testing.T) {
	_, err := New(config.Configuration{Platform: "desktop"}, framework.NullLogger())
	require.Error(t, err)
	var ie *InitializationError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Error(), "desktop")
}

func TestLocatorConstructors(t *testing.T) {
	assert.Equal(t, Locator{Strategy: ByCSS, Value: "#a"}, CSS("#a"))
	assert.Equal(t, Locator{Strategy: ByXPath, Value: "//div"}, XPath("//div"))
	assert.Equal(t, Locator{Strategy: ByID, Value: "a"}, ID("a"))
	assert.Equal(t, Locator{Strategy: ByAccessibilityID, Value: "a"}, AccessibilityID("a"))
	assert.Equal(t, `css="#a"`, CSS("#a").String())
}

func TestWebDriverBacksItsAdvertisedCapabilities(t *testing.T) {
	d := Driver((*webDriver)(nil))

	_, ok := d.(Gestures)
	assert.True(t, ok, "web driver should implement gestures")
	_, ok = d.(Mouse)
	assert.True(t, ok, "web driver should implement mouse actions")
	_, ok = d.(Frames)
	assert.True(t, ok, "web driver should implement frame switching")

	caps := d.Capabilities()
	assert.True(t, caps.Has(CapabilityGestures))
	assert.True(t, caps.Has(CapabilityFrames))
}

func TestMobileDriverBacksItsAdvertisedCapabilities(t *testing.T) {
	d := Driver((*mobileDriver)(nil))

	_, ok := d.(Gestures)
	assert.True(t, ok, "mobile driver should implement gestures")
	_, ok = d.(Mouse)
	assert.False(t, ok, "touch drivers have no pointer")
	_, ok = d.(Frames)
	assert.False(t, ok, "mobile driver does not switch frames")

	caps := d.Capabilities()
	assert.True(t, caps.Has(CapabilityGestures))
	assert.False(t, caps.Has(CapabilityFrames))
}

func TestWireStrategyNames(t *testing.T) {
	for locator, expected := range map[Locator]string{
		CSS("#a"):            "css selector",
		XPath("//div"):       "xpath",
		ID("a"):              "id",
		AccessibilityID("a"): "accessibility id",
	} {
		using, err := wireStrategyFor(locator)
		require.NoError(t, err)
		assert.Equal(t, expected, using)
	}

	_, err := wireStrategyFor(Locator{Strategy: "name", Value: "x"})
	require.Error(t, err)
}

func TestWireErrorKinds(t *testing.T) {
	for code, expected := range map[string]ErrorKind{
		"no such element":          KindLocatorNotFound,
		"stale element reference":  KindLocatorNotFound,
		"timeout":                  KindTimeout,
		"script timeout":           KindTimeout,
		"invalid session id":       KindDriverDisconnected,
		"session not created":      KindDriverDisconnected,
		"element not interactable": KindActionFailed,
		"anything else":            KindActionFailed,
	} {
		assert.Equal(t, expected, wireError{ErrorCode: code}.kind(), "code %q", code)
	}
}

func TestActionErrorFormatting(t *testing.T) {
	bare := &ActionError{Kind: KindTimeout, Action: "wait for #status"}
	assert.Equal(t, "wait for #status: timeout", bare.Error())

	wrapped := &ActionError{Kind: KindActionFailed, Action: "click", Err: errors.New("boom")}
	assert.Equal(t, "click: action-failed: boom", wrapped.Error())
	assert.Equal(t, "boom", errors.Unwrap(wrapped).Error())
}

func TestNewActionErrorPreservesInnerKind(t *testing.T) {
	inner := &ActionError{Kind: KindLocatorNotFound, Action: "find #a", Err: errors.New("gone")}
	outer := NewActionError(KindActionFailed, "click #a", inner)

	assert.Equal(t, KindLocatorNotFound, outer.Kind)
	assert.Equal(t, "click #a: find #a", outer.Action)
	assert.Equal(t, "gone", outer.Err.Error())
}

func TestAsActionError(t *testing.T) {
	inner := &ActionError{Kind: KindTimeout, Action: "wait"}
	assert.Same(t, inner, AsActionError("ignored", inner))

	normalized := AsActionError("assert title", errors.New("mismatch"))
	assert.Equal(t, KindActionFailed, normalized.Kind)
	assert.Equal(t, "assert title", normalized.Action)
}
