// Package driver defines the harness's abstraction over a live automation session
// and provides the two implementations selected by the configuration: a web driver
// backed by the go-rod CDP engine, and a mobile driver speaking the W3C WebDriver
// wire protocol to an Appium-compatible server.
//
// A Driver is exclusively owned by one test-run context. Nothing here retries or
// waits; bounded polling lives in the page layer.
package driver

import (
	"fmt"

	"github.com/qaforge/uiharness/config"
	"github.com/qaforge/uiharness/framework"
)

// Capability names reported by driver implementations. Tests gate themselves on
// these via uitest.(*T).RequireCapability.
const (
	CapabilityNavigation  = "navigation"
	CapabilityScreenshots = "screenshots"
	CapabilityPageSource  = "page-source"
	CapabilityGestures    = "gestures"
	CapabilityFrames      = "frames"
)

// Strategy identifies how a Locator's value should be interpreted.
type Strategy string

const (
	ByCSS             Strategy = "css"
	ByXPath           Strategy = "xpath"
	ByID              Strategy = "id"
	ByAccessibilityID Strategy = "accessibility-id"
)

// Locator is a strategy/value pair identifying a UI element.
type Locator struct {
	Strategy Strategy
	Value    string
}

func CSS(value string) Locator   { return Locator{Strategy: ByCSS, Value: value} }
func XPath(value string) Locator { return Locator{Strategy: ByXPath, Value: value} }
func ID(value string) Locator    { return Locator{Strategy: ByID, Value: value} }
func AccessibilityID(value string) Locator {
	return Locator{Strategy: ByAccessibilityID, Value: value}
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", l.Strategy, l.Value)
}

// Element is a handle to a located UI element. Handles can go stale if the page
// changes; operations on a stale handle return an ActionError.
type Element interface {
	// Click performs a single click or tap on the element.
	Click() error

	// Type sends the text to the element as keystrokes.
	Type(text string) error

	// Text returns the element's visible text content.
	Text() (string, error)

	// Visible reports whether the element is currently displayed.
	Visible() (bool, error)
}

// Driver is the capability contract over a live automation session. Both the web
// and the mobile implementation satisfy it; page objects only ever see this
// interface.
type Driver interface {
	// Platform reports which configuration platform constructed this driver.
	Platform() config.Platform

	// SessionID is the harness-side identifier for this session, used in log
	// prefixes and attachment names.
	SessionID() string

	// Capabilities lists the optional features this session supports.
	Capabilities() framework.Capabilities

	// Navigate loads the given URL (web) or activates the given screen (mobile,
	// where supported by the automation server).
	Navigate(url string) error

	// Find locates a single element without waiting. The error has kind
	// locator-not-found if no element matches.
	Find(locator Locator) (Element, error)

	// FindAll locates all matching elements without waiting. An empty result is
	// not an error.
	FindAll(locator Locator) ([]Element, error)

	// Title returns the page title (web) or current activity name (mobile).
	Title() (string, error)

	// CurrentURL returns the browser's current URL. Mobile drivers report an
	// action-failed error unless the session is in a web context.
	CurrentURL() (string, error)

	// PageSource returns the current DOM or view hierarchy as markup.
	PageSource() (string, error)

	// Screenshot captures the current viewport as PNG data.
	Screenshot() ([]byte, error)

	// Close tears down the underlying automation session. It is safe to call at
	// most once; the Driver is unusable afterward.
	Close() error
}

// Gestures is implemented by drivers that support pointer gestures beyond plain
// clicks. Both drivers implement it; page objects should type-assert.
type Gestures interface {
	// DoubleTap performs a double tap (or double click) at the element's location.
	DoubleTap(locator Locator) error

	// DragAndDrop drags the source element onto the target element.
	DragAndDrop(source, target Locator) error
}

// Mouse is implemented by drivers with a real pointer. Only the web driver
// implements it; hovering and right-clicking have no touch equivalent.
type Mouse interface {
	// Hover moves the pointer over the element without clicking.
	Hover(locator Locator) error

	// ContextClick performs a right click on the element.
	ContextClick(locator Locator) error
}

// Frames is implemented by drivers that can move element lookups into an
// embedded document. Only the web driver implements it.
type Frames interface {
	// SwitchToFrame scopes subsequent element lookups to the embedded document
	// of the given frame element.
	SwitchToFrame(locator Locator) error

	// SwitchToDefault returns element lookups to the top-level document.
	SwitchToDefault() error
}
