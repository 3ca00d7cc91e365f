// Package mockapp provides the mock services the harness tests itself against: a
// small web application with deterministic fixture pages, and a mock
// Appium-compatible automation server implementing the subset of the WebDriver
// protocol the mobile driver speaks. Suite self-test mode and the package tests
// both run against these, so no real browser target or device farm is needed.
package mockapp

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/qaforge/uiharness/framework"
	"github.com/qaforge/uiharness/framework/helpers"

	"github.com/gorilla/mux"
)

// WebApp is a mux-routed mock web application. It serves a home page, a login
// form, and a page whose content appears only after a delay, which is what the
// wait-condition tests need.
type WebApp struct {
	handler       http.Handler
	debugLogger   framework.Logger
	loginAttempts chan LoginAttempt

	lock       sync.Mutex
	loginCount int
}

// LoginAttempt describes one submission of the login form.
type LoginAttempt struct {
	Username string
	Accepted bool
}

// Credentials accepted by the login form.
const (
	ValidUsername = "qa"
	ValidPassword = "secret"
)

func NewWebApp(debugLogger framework.Logger) *WebApp {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	a := &WebApp{
		debugLogger:   debugLogger,
		loginAttempts: make(chan LoginAttempt, 100),
	}

	router := mux.NewRouter()
	router.HandleFunc("/", a.serveHome).Methods("GET")
	router.HandleFunc("/login", a.serveLoginForm).Methods("GET")
	router.HandleFunc("/login", a.serveLoginSubmit).Methods("POST")
	router.HandleFunc("/delayed", a.serveDelayed).Methods("GET")
	router.HandleFunc("/framed", a.serveFramed).Methods("GET")
	a.handler = router

	return a
}

func (a *WebApp) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.debugLogger.Printf("Mock web app received %s %s", r.Method, r.URL.Path)
	a.handler.ServeHTTP(w, r)
}

// LoginCount returns how many login submissions the app has received.
func (a *WebApp) LoginCount() int {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.loginCount
}

// LoginAttempts receives an event for each login submission, so callers can
// wait for the browser-driven form post to arrive.
func (a *WebApp) LoginAttempts() <-chan LoginAttempt {
	return a.loginAttempts
}

func (a *WebApp) serveHome(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, "Mock App Home", `
		<h1 id="heading">Mock App</h1>
		<p class="nav"><a id="login-link" href="/login">Log in</a></p>
		<div id="drag-source" draggable="true">drag me</div>
		<div id="drop-target">drop here</div>`)
}

// serveFramed embeds the home page in an iframe, for frame-switching tests.
func (a *WebApp) serveFramed(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, "Mock App Framed", `
		<p id="outer-note">Outer document</p>
		<iframe id="content-frame" src="/"></iframe>`)
}

func (a *WebApp) serveLoginForm(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, "Mock App Login", `
		<form id="login-form" method="POST" action="/login">
			<input id="username" name="username" type="text">
			<input id="password" name="password" type="password">
			<button id="submit" type="submit">Log in</button>
		</form>`)
}

func (a *WebApp) serveLoginSubmit(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	a.lock.Lock()
	a.loginCount++
	a.lock.Unlock()

	username := r.Form.Get("username")
	accepted := username == ValidUsername && r.Form.Get("password") == ValidPassword
	helpers.NonBlockingSend(a.loginAttempts, LoginAttempt{Username: username, Accepted: accepted})

	if accepted {
		writeHTML(w, "Mock App Welcome",
			fmt.Sprintf(`<p id="greeting">Welcome, %s</p>`, username))
		return
	}
	w.WriteHeader(http.StatusUnauthorized)
	writeHTML(w, "Mock App Login", `<p id="login-error">Invalid credentials</p>`)
}

// serveDelayed renders a page whose "#late" element is inserted by script after
// the number of milliseconds given in the "ms" query parameter.
func (a *WebApp) serveDelayed(w http.ResponseWriter, r *http.Request) {
	ms, err := strconv.Atoi(r.URL.Query().Get("ms"))
	if err != nil || ms < 0 {
		ms = 500
	}
	body := fmt.Sprintf(`
		<div id="container"></div>
		<script>
			setTimeout(function() {
				var el = document.createElement("p");
				el.id = "late";
				el.textContent = "finally here";
				document.getElementById("container").appendChild(el);
			}, %d);
		</script>`, ms)
	writeHTML(w, "Mock App Delayed", body)
}

func writeHTML(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body>%s</body></html>",
		title, body)
}
