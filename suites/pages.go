package suites

import (
	"github.com/qaforge/uiharness/driver"
	"github.com/qaforge/uiharness/page"
)

// The concrete page objects for the web suite. Each embeds the page base and
// adds its own locators and screen-specific actions; none of them hold state
// beyond the embedded base.

type HomePage struct {
	page.Page

	Heading   driver.Locator
	LoginLink driver.Locator
}

func NewHomePage(base page.Page) *HomePage {
	return &HomePage{
		Page:      base,
		Heading:   driver.CSS("#heading"),
		LoginLink: driver.CSS("#login-link"),
	}
}

// GoToLogin follows the login link and waits for the login form to appear.
func (p *HomePage) GoToLogin() (*LoginPage, error) {
	if err := p.Click(p.LoginLink); err != nil {
		return nil, err
	}
	lp := NewLoginPage(p.Page)
	return lp, lp.WaitVisible(lp.Form)
}

type LoginPage struct {
	page.Page

	Form     driver.Locator
	Username driver.Locator
	Password driver.Locator
	Submit   driver.Locator
	Greeting driver.Locator
	Error    driver.Locator
}

func NewLoginPage(base page.Page) *LoginPage {
	return &LoginPage{
		Page:     base,
		Form:     driver.CSS("#login-form"),
		Username: driver.CSS("#username"),
		Password: driver.CSS("#password"),
		Submit:   driver.CSS("#submit"),
		Greeting: driver.CSS("#greeting"),
		Error:    driver.CSS("#login-error"),
	}
}

// Login fills in the form and submits it. It does not wait for the outcome;
// callers decide whether to expect the greeting or the error message.
func (p *LoginPage) Login(username, password string) error {
	if err := p.Type(p.Username, username); err != nil {
		return err
	}
	if err := p.Type(p.Password, password); err != nil {
		return err
	}
	return p.Click(p.Submit)
}
