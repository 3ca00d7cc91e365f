package page

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/qaforge/uiharness/driver"
)

// Condition is a predicate over the current UI state, polled by Page.WaitFor.
type Condition struct {
	// Check reports whether the condition currently holds. Errors of kind
	// locator-not-found are treated by WaitFor as the condition not holding yet.
	Check func(d driver.Driver) (bool, error)

	// Describe is a short name for log and error messages.
	description string
}

func (c Condition) Describe() string { return c.description }

// ElementPresent holds when at least one element matches the locator.
func ElementPresent(locator driver.Locator) Condition {
	return Condition{
		description: fmt.Sprintf("element %s present", locator),
		Check: func(d driver.Driver) (bool, error) {
			_, err := d.Find(locator)
			if err != nil {
				return false, err
			}
			return true, nil
		},
	}
}

// ElementVisible holds when an element matches the locator and is displayed.
func ElementVisible(locator driver.Locator) Condition {
	return Condition{
		description: fmt.Sprintf("element %s visible", locator),
		Check: func(d driver.Driver) (bool, error) {
			el, err := d.Find(locator)
			if err != nil {
				return false, err
			}
			return el.Visible()
		},
	}
}

// TitleContains holds when the page title contains the substring.
func TitleContains(substring string) Condition {
	return Condition{
		description: fmt.Sprintf("title contains %q", substring),
		Check: func(d driver.Driver) (bool, error) {
			title, err := d.Title()
			if err != nil {
				return false, err
			}
			return strings.Contains(title, substring), nil
		},
	}
}

// URLMatches holds when the current URL matches the regex pattern.
func URLMatches(pattern *regexp.Regexp) Condition {
	return Condition{
		description: fmt.Sprintf("url matches %q", pattern),
		Check: func(d driver.Driver) (bool, error) {
			url, err := d.CurrentURL()
			if err != nil {
				return false, err
			}
			return pattern.MatchString(url), nil
		},
	}
}

// TextIs holds when the element exists and its text equals expected exactly.
func TextIs(locator driver.Locator, expected string) Condition {
	return Condition{
		description: fmt.Sprintf("text of %s is %q", locator, expected),
		Check: func(d driver.Driver) (bool, error) {
			el, err := d.Find(locator)
			if err != nil {
				return false, err
			}
			text, err := el.Text()
			if err != nil {
				return false, err
			}
			return text == expected, nil
		},
	}
}
