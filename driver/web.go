package driver

import (
	"fmt"
	"strings"

	"github.com/qaforge/uiharness/config"
	"github.com/qaforge/uiharness/framework"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// webDriver drives a Chromium-family browser over CDP. One webDriver owns one
// browser page for its whole lifetime.
type webDriver struct {
	sessionID string
	cfg       config.Configuration
	logger    framework.Logger
	browser   *rod.Browser
	page      *rod.Page
	frame     *rod.Page // non-nil while element lookups are scoped to a frame
	launched  bool      // false when attached to an external browser via debuggerUrl
}

func newWebDriver(cfg config.Configuration, logger framework.Logger) (Driver, error) {
	sessionID := uuid.NewString()
	logger.Printf("Starting web session %s (browser=%s headless=%v)",
		sessionID, cfg.Web.Browser, cfg.Web.Headless)

	controlURL := cfg.Web.DebuggerURL
	launched := false
	if controlURL == "" {
		l := launcher.New().Headless(cfg.Web.Headless)
		if bin, ok := launcher.LookPath(); ok {
			l = l.Bin(bin)
		}
		if cfg.Web.WindowWidth > 0 && cfg.Web.WindowHeight > 0 {
			l = l.Set(flags.Flag("window-size"),
				fmt.Sprintf("%d,%d", cfg.Web.WindowWidth, cfg.Web.WindowHeight))
		}
		u, err := l.Launch()
		if err != nil {
			return nil, &InitializationError{Platform: config.PlatformWeb,
				Err: fmt.Errorf("cannot launch browser: %w", err)}
		}
		controlURL = u
		launched = true
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, &InitializationError{Platform: config.PlatformWeb,
			Err: fmt.Errorf("cannot connect to browser at %s: %w", controlURL, err)}
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return nil, &InitializationError{Platform: config.PlatformWeb,
			Err: fmt.Errorf("cannot open page: %w", err)}
	}
	if cfg.Web.WindowWidth > 0 && cfg.Web.WindowHeight > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             cfg.Web.WindowWidth,
			Height:            cfg.Web.WindowHeight,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			_ = browser.Close()
			return nil, &InitializationError{Platform: config.PlatformWeb,
				Err: fmt.Errorf("cannot set viewport: %w", err)}
		}
	}

	logger.Printf("Web session %s ready", sessionID)
	return &webDriver{
		sessionID: sessionID,
		cfg:       cfg,
		logger:    logger,
		browser:   browser,
		page:      page,
		launched:  launched,
	}, nil
}

func (d *webDriver) Platform() config.Platform { return config.PlatformWeb }

func (d *webDriver) SessionID() string { return d.sessionID }

func (d *webDriver) Capabilities() framework.Capabilities {
	return framework.Capabilities{
		CapabilityNavigation, CapabilityScreenshots, CapabilityPageSource,
		CapabilityGestures, CapabilityFrames,
	}
}

// current returns the document that element lookups operate on: the focused
// frame if one is selected, otherwise the top-level page.
func (d *webDriver) current() *rod.Page {
	if d.frame != nil {
		return d.frame
	}
	return d.page
}

func (d *webDriver) Navigate(url string) error {
	d.logger.Printf("Navigating to %s", url)
	d.frame = nil // navigation discards any frame focus
	if err := d.page.Navigate(url); err != nil {
		return webError("navigate", err)
	}
	if err := d.page.WaitLoad(); err != nil {
		return webError("navigate: wait for load", err)
	}
	return nil
}

func (d *webDriver) Find(locator Locator) (Element, error) {
	has, el, err := d.lookup(locator)
	if err != nil {
		return nil, webError(fmt.Sprintf("find %s", locator), err)
	}
	if !has {
		return nil, &ActionError{Kind: KindLocatorNotFound,
			Action: fmt.Sprintf("find %s", locator)}
	}
	return &webElement{el: el, locator: locator}, nil
}

func (d *webDriver) FindAll(locator Locator) ([]Element, error) {
	var els rod.Elements
	var err error
	switch locator.Strategy {
	case ByXPath:
		els, err = d.current().ElementsX(locator.Value)
	default:
		selector, selErr := cssSelectorFor(locator)
		if selErr != nil {
			return nil, selErr
		}
		els, err = d.current().Elements(selector)
	}
	if err != nil {
		return nil, webError(fmt.Sprintf("find all %s", locator), err)
	}
	ret := make([]Element, 0, len(els))
	for _, el := range els {
		ret = append(ret, &webElement{el: el, locator: locator})
	}
	return ret, nil
}

func (d *webDriver) lookup(locator Locator) (bool, *rod.Element, error) {
	if locator.Strategy == ByXPath {
		return d.current().HasX(locator.Value)
	}
	selector, err := cssSelectorFor(locator)
	if err != nil {
		return false, nil, err
	}
	return d.current().Has(selector)
}

func cssSelectorFor(locator Locator) (string, error) {
	switch locator.Strategy {
	case ByCSS:
		return locator.Value, nil
	case ByID:
		return "#" + locator.Value, nil
	default:
		return "", &ActionError{Kind: KindActionFailed,
			Action: fmt.Sprintf("find %s", locator),
			Err:    fmt.Errorf("strategy %q is not supported on the web platform", locator.Strategy)}
	}
}

func (d *webDriver) Title() (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", webError("get title", err)
	}
	return info.Title, nil
}

func (d *webDriver) CurrentURL() (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", webError("get current url", err)
	}
	return info.URL, nil
}

func (d *webDriver) PageSource() (string, error) {
	html, err := d.current().HTML()
	if err != nil {
		return "", webError("get page source", err)
	}
	return html, nil
}

func (d *webDriver) Screenshot() ([]byte, error) {
	data, err := d.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, webError("screenshot", err)
	}
	return data, nil
}

// SwitchToFrame implements Frames. Subsequent element lookups are scoped to the
// embedded document until SwitchToDefault or a navigation.
func (d *webDriver) SwitchToFrame(locator Locator) error {
	d.logger.Printf("Switching to frame %s", locator)
	action := fmt.Sprintf("switch to frame %s", locator)
	has, el, err := d.lookup(locator)
	if err != nil {
		return webError(action, err)
	}
	if !has {
		return &ActionError{Kind: KindLocatorNotFound, Action: action}
	}
	frame, err := el.Frame()
	if err != nil {
		return webError(action, err)
	}
	if err := frame.WaitLoad(); err != nil {
		return webError(action+": wait for load", err)
	}
	d.frame = frame
	return nil
}

// SwitchToDefault implements Frames.
func (d *webDriver) SwitchToDefault() error {
	d.logger.Printf("Switching back to the top-level document")
	d.frame = nil
	return nil
}

// DoubleTap implements Gestures as a double click.
func (d *webDriver) DoubleTap(locator Locator) error {
	el, err := d.Find(locator)
	if err != nil {
		return err
	}
	d.logger.Printf("Double clicking %s", locator)
	if err := el.(*webElement).el.Click(proto.InputMouseButtonLeft, 2); err != nil {
		return webError(fmt.Sprintf("double click %s", locator), err)
	}
	return nil
}

// DragAndDrop implements Gestures with a press, move, release pointer sequence,
// the same sequence a click-and-hold action chain performs.
func (d *webDriver) DragAndDrop(source, target Locator) error {
	sourceEl, err := d.Find(source)
	if err != nil {
		return err
	}
	targetEl, err := d.Find(target)
	if err != nil {
		return err
	}
	d.logger.Printf("Dragging %s onto %s", source, target)
	action := fmt.Sprintf("drag %s onto %s", source, target)

	if err := sourceEl.(*webElement).el.Hover(); err != nil {
		return webError(action, err)
	}
	mouse := d.current().Mouse
	if err := mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return webError(action, err)
	}
	shape, err := targetEl.(*webElement).el.Shape()
	if err != nil {
		_ = mouse.Up(proto.InputMouseButtonLeft, 1)
		return webError(action, err)
	}
	point := shape.OnePointInside()
	if point == nil {
		_ = mouse.Up(proto.InputMouseButtonLeft, 1)
		return &ActionError{Kind: KindActionFailed, Action: action,
			Err: fmt.Errorf("target element has no visible area")}
	}
	if err := mouse.MoveLinear(*point, 5); err != nil {
		_ = mouse.Up(proto.InputMouseButtonLeft, 1)
		return webError(action, err)
	}
	if err := mouse.Up(proto.InputMouseButtonLeft, 1); err != nil {
		return webError(action, err)
	}
	return nil
}

// Hover implements Mouse.
func (d *webDriver) Hover(locator Locator) error {
	el, err := d.Find(locator)
	if err != nil {
		return err
	}
	d.logger.Printf("Hovering over %s", locator)
	if err := el.(*webElement).el.Hover(); err != nil {
		return webError(fmt.Sprintf("hover over %s", locator), err)
	}
	return nil
}

// ContextClick implements Mouse.
func (d *webDriver) ContextClick(locator Locator) error {
	el, err := d.Find(locator)
	if err != nil {
		return err
	}
	d.logger.Printf("Right clicking %s", locator)
	if err := el.(*webElement).el.Click(proto.InputMouseButtonRight, 1); err != nil {
		return webError(fmt.Sprintf("context click %s", locator), err)
	}
	return nil
}

func (d *webDriver) Close() error {
	d.logger.Printf("Closing web session %s", d.sessionID)
	err := d.browser.Close()
	if err != nil && !isDisconnectError(err) {
		return webError("close session", err)
	}
	return nil
}

// webError normalizes errors coming out of the CDP engine.
func webError(action string, err error) error {
	if ae, ok := err.(*ActionError); ok {
		return ae
	}
	kind := KindActionFailed
	if isDisconnectError(err) {
		kind = KindDriverDisconnected
	}
	return &ActionError{Kind: kind, Action: action, Err: err}
}

func isDisconnectError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "context canceled") ||
		strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "websocket: close")
}

// webElement adapts a rod element to the Element interface.
type webElement struct {
	el      *rod.Element
	locator Locator
}

func (e *webElement) Click() error {
	if err := e.el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return webError(fmt.Sprintf("click %s", e.locator), err)
	}
	return nil
}

func (e *webElement) Type(text string) error {
	if err := e.el.Input(text); err != nil {
		return webError(fmt.Sprintf("type into %s", e.locator), err)
	}
	return nil
}

func (e *webElement) Text() (string, error) {
	text, err := e.el.Text()
	if err != nil {
		return "", webError(fmt.Sprintf("read text of %s", e.locator), err)
	}
	return text, nil
}

func (e *webElement) Visible() (bool, error) {
	visible, err := e.el.Visible()
	if err != nil {
		return false, webError(fmt.Sprintf("check visibility of %s", e.locator), err)
	}
	return visible, nil
}
