// Package page provides the base that concrete page objects embed: element
// lookup, high-level actions, and bounded-poll waiting, all delegating to the
// driver abstraction. A Page holds a non-owning driver reference and is scoped
// to a single test case; it keeps no state beyond its locators.
package page

import (
	"errors"
	"fmt"
	"time"

	"github.com/qaforge/uiharness/driver"
	"github.com/qaforge/uiharness/framework"
)

const (
	pollIntervalFloor = 50 * time.Millisecond
	pollIntervalCap   = time.Second
)

// Page is the shared capability base for page objects. Construct with New;
// concrete page objects embed it and add screen-specific locators and actions.
type Page struct {
	driver  driver.Driver
	logger  framework.Logger
	timeout time.Duration
}

// New creates a Page bound to an existing driver session. timeout is the default
// wait budget for WaitFor and the Wait* convenience methods.
func New(d driver.Driver, logger framework.Logger, timeout time.Duration) Page {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return Page{driver: d, logger: logger, timeout: timeout}
}

// Driver exposes the underlying session for page objects that need
// platform-specific features such as gestures.
func (p *Page) Driver() driver.Driver { return p.driver }

// Timeout returns the page's default wait budget.
func (p *Page) Timeout() time.Duration { return p.timeout }

// Open navigates to the given URL.
func (p *Page) Open(url string) error {
	p.logger.Printf("Opening %s", url)
	return p.driver.Navigate(url)
}

// Find locates a single element, waiting up to the page's timeout for it to
// appear. If no element matches within the budget the error has kind timeout,
// wrapping the last locator-not-found failure.
func (p *Page) Find(locator driver.Locator) (driver.Element, error) {
	p.logger.Printf("Finding element %s", locator)
	if err := p.WaitFor(ElementPresent(locator), p.timeout); err != nil {
		return nil, err
	}
	return p.driver.Find(locator)
}

// FindAll locates all matching elements without waiting.
func (p *Page) FindAll(locator driver.Locator) ([]driver.Element, error) {
	p.logger.Printf("Finding all elements %s", locator)
	return p.driver.FindAll(locator)
}

// Click waits for the element to be visible, then clicks it.
func (p *Page) Click(locator driver.Locator) error {
	if err := p.WaitFor(ElementVisible(locator), p.timeout); err != nil {
		return err
	}
	el, err := p.driver.Find(locator)
	if err != nil {
		return err
	}
	p.logger.Printf("Clicking %s", locator)
	return el.Click()
}

// Type waits for the element to be visible, then sends it the text.
func (p *Page) Type(locator driver.Locator, text string) error {
	if err := p.WaitFor(ElementVisible(locator), p.timeout); err != nil {
		return err
	}
	el, err := p.driver.Find(locator)
	if err != nil {
		return err
	}
	p.logger.Printf("Typing %d characters into %s", len(text), locator)
	return el.Type(text)
}

// Text waits for the element to be present, then returns its visible text.
func (p *Page) Text(locator driver.Locator) (string, error) {
	el, err := p.Find(locator)
	if err != nil {
		return "", err
	}
	return el.Text()
}

// Title returns the current page title.
func (p *Page) Title() (string, error) {
	return p.driver.Title()
}

// CurrentURL returns the browser's current URL.
func (p *Page) CurrentURL() (string, error) {
	return p.driver.CurrentURL()
}

// WaitFor polls the condition with bounded retries until it holds or the timeout
// elapses. Polling backs off linearly from 50ms up to a 1s cap. The returned
// error on expiry has kind timeout and is produced only after at least the full
// timeout has passed; a condition error of kind locator-not-found counts as "not
// yet" rather than a failure, so conditions can wait for elements that do not
// exist at first.
func (p *Page) WaitFor(condition Condition, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	interval := pollIntervalFloor
	var lastErr error
	for attempt := 0; ; attempt++ {
		ok, err := condition.Check(p.driver)
		if err != nil {
			var ae *driver.ActionError
			if errors.As(err, &ae) && ae.Kind == driver.KindLocatorNotFound {
				lastErr = err
			} else {
				return err
			}
		} else if ok {
			p.logger.Printf("Condition %q met after %d poll(s)", condition.Describe(), attempt+1)
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if interval > remaining {
			interval = remaining
		}
		time.Sleep(interval)
		interval += pollIntervalFloor
		if interval > pollIntervalCap {
			interval = pollIntervalCap
		}
	}
	p.logger.Printf("Condition %q not met within %s", condition.Describe(), timeout)
	return &driver.ActionError{
		Kind:   driver.KindTimeout,
		Action: fmt.Sprintf("wait for %s", condition.Describe()),
		Err:    lastErr,
	}
}

// WaitVisible is shorthand for WaitFor(ElementVisible(locator), default timeout).
func (p *Page) WaitVisible(locator driver.Locator) error {
	return p.WaitFor(ElementVisible(locator), p.timeout)
}
