package driver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qaforge/uiharness/config"
	"github.com/qaforge/uiharness/framework"
)

// mobileDriver talks to an Appium-compatible automation server over the W3C
// WebDriver wire protocol. The harness owns the remote session for its lifetime.
type mobileDriver struct {
	serverURL string
	sessionID string
	target    string
	logger    framework.Logger
	client    *http.Client
	closed    bool
}

func newMobileDriver(cfg config.Configuration, logger framework.Logger) (Driver, error) {
	caps := wireCapability{}
	for k, v := range cfg.Mobile.DesiredCapabilities {
		caps[k] = v
	}
	if _, ok := caps["appium:app"]; !ok {
		// The configured target is the app identifier unless the capabilities
		// already name one explicitly.
		caps["appium:app"] = cfg.Target
	}

	d := &mobileDriver{
		serverURL: cfg.Mobile.ServerURL,
		target:    cfg.Target,
		logger:    logger,
		client:    &http.Client{Timeout: cfg.Timeout + 30*time.Second},
	}

	body, _ := json.Marshal(newSessionRequest{
		Capabilities: wireCapabilities{AlwaysMatch: caps},
	})
	logger.Printf("Starting mobile session at %s with capabilities: %s", d.serverURL, string(body))

	var value newSessionValue
	if err := d.do("POST", "/session", body, &value); err != nil {
		return nil, &InitializationError{Platform: config.PlatformMobile, Err: err}
	}
	if value.SessionID == "" {
		return nil, &InitializationError{Platform: config.PlatformMobile,
			Err: fmt.Errorf("automation server did not return a session id")}
	}
	d.sessionID = value.SessionID
	logger.Printf("Mobile session %s ready", d.sessionID)
	return d, nil
}

func (d *mobileDriver) Platform() config.Platform { return config.PlatformMobile }

func (d *mobileDriver) SessionID() string { return d.sessionID }

func (d *mobileDriver) Capabilities() framework.Capabilities {
	return framework.Capabilities{CapabilityScreenshots, CapabilityPageSource, CapabilityGestures}
}

func (d *mobileDriver) sessionPath(suffix string) string {
	return "/session/" + d.sessionID + suffix
}

func (d *mobileDriver) Navigate(url string) error {
	body, _ := json.Marshal(navigateRequest{URL: url})
	if err := d.do("POST", d.sessionPath("/url"), body, nil); err != nil {
		return mobileError("navigate", err)
	}
	return nil
}

func (d *mobileDriver) Find(locator Locator) (Element, error) {
	using, err := wireStrategyFor(locator)
	if err != nil {
		return nil, err
	}
	body, _ := json.Marshal(findElementRequest{Using: using, Value: locator.Value})
	var el wireElement
	if err := d.do("POST", d.sessionPath("/element"), body, &el); err != nil {
		return nil, mobileError(fmt.Sprintf("find %s", locator), err)
	}
	if el.id() == "" {
		return nil, &ActionError{Kind: KindLocatorNotFound,
			Action: fmt.Sprintf("find %s", locator)}
	}
	return &mobileElement{driver: d, elementID: el.id(), locator: locator}, nil
}

func (d *mobileDriver) FindAll(locator Locator) ([]Element, error) {
	using, err := wireStrategyFor(locator)
	if err != nil {
		return nil, err
	}
	body, _ := json.Marshal(findElementRequest{Using: using, Value: locator.Value})
	var els []wireElement
	if err := d.do("POST", d.sessionPath("/elements"), body, &els); err != nil {
		return nil, mobileError(fmt.Sprintf("find all %s", locator), err)
	}
	ret := make([]Element, 0, len(els))
	for _, el := range els {
		ret = append(ret, &mobileElement{driver: d, elementID: el.id(), locator: locator})
	}
	return ret, nil
}

func (d *mobileDriver) Title() (string, error) {
	var title string
	if err := d.do("GET", d.sessionPath("/title"), nil, &title); err != nil {
		return "", mobileError("get title", err)
	}
	return title, nil
}

func (d *mobileDriver) CurrentURL() (string, error) {
	var url string
	if err := d.do("GET", d.sessionPath("/url"), nil, &url); err != nil {
		return "", mobileError("get current url", err)
	}
	return url, nil
}

func (d *mobileDriver) PageSource() (string, error) {
	var source string
	if err := d.do("GET", d.sessionPath("/source"), nil, &source); err != nil {
		return "", mobileError("get page source", err)
	}
	return source, nil
}

func (d *mobileDriver) Screenshot() ([]byte, error) {
	var encoded string
	if err := d.do("GET", d.sessionPath("/screenshot"), nil, &encoded); err != nil {
		return nil, mobileError("screenshot", err)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &ActionError{Kind: KindActionFailed, Action: "screenshot",
			Err: fmt.Errorf("malformed screenshot data: %w", err)}
	}
	return data, nil
}

// DoubleTap implements Gestures using the server's mobile gesture commands, the
// same mechanism the Appium UiAutomator2 driver exposes through execute.
func (d *mobileDriver) DoubleTap(locator Locator) error {
	el, err := d.Find(locator)
	if err != nil {
		return err
	}
	me := el.(*mobileElement)
	body, _ := json.Marshal(executeRequest{
		Script: "mobile: doubleClickGesture",
		Args:   []interface{}{map[string]interface{}{"elementId": me.elementID}},
	})
	if err := d.do("POST", d.sessionPath("/execute/sync"), body, nil); err != nil {
		return mobileError(fmt.Sprintf("double tap %s", locator), err)
	}
	return nil
}

// DragAndDrop implements Gestures.
func (d *mobileDriver) DragAndDrop(source, target Locator) error {
	sourceEl, err := d.Find(source)
	if err != nil {
		return err
	}
	targetEl, err := d.Find(target)
	if err != nil {
		return err
	}
	body, _ := json.Marshal(executeRequest{
		Script: "mobile: dragGesture",
		Args: []interface{}{map[string]interface{}{
			"elementId":    sourceEl.(*mobileElement).elementID,
			"endElementId": targetEl.(*mobileElement).elementID,
		}},
	})
	if err := d.do("POST", d.sessionPath("/execute/sync"), body, nil); err != nil {
		return mobileError(fmt.Sprintf("drag %s onto %s", source, target), err)
	}
	return nil
}

func (d *mobileDriver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.logger.Printf("Closing mobile session %s", d.sessionID)
	if err := d.do("DELETE", d.sessionPath(""), nil, nil); err != nil {
		// Losing the race with a server that tears the session down on its own is
		// not a teardown failure.
		d.logger.Printf("DELETE session request failed: %s", err)
		return mobileError("close session", err)
	}
	return nil
}

// do sends one WebDriver request and unmarshals the response's "value" field into
// valueOut if it is non-nil. Protocol-level errors come back as wireError.
func (d *mobileDriver) do(method, path string, body []byte, valueOut interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewBuffer(body)
	}
	req, err := http.NewRequest(method, d.serverURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return &ActionError{Kind: KindDriverDisconnected,
			Action: method + " " + path, Err: err}
	}
	var respBody []byte
	if resp.Body != nil {
		respBody, _ = io.ReadAll(resp.Body)
		_ = resp.Body.Close()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errEnvelope struct {
			Value wireError `json:"value"`
		}
		if json.Unmarshal(respBody, &errEnvelope) == nil && errEnvelope.Value.ErrorCode != "" {
			return &ActionError{Kind: errEnvelope.Value.kind(),
				Action: method + " " + path, Err: errEnvelope.Value}
		}
		return fmt.Errorf("automation server returned %d for %s %s", resp.StatusCode, method, path)
	}

	if valueOut != nil {
		var envelope struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(respBody, &envelope); err != nil {
			return fmt.Errorf("malformed response from automation server: %s", string(respBody))
		}
		if err := json.Unmarshal(envelope.Value, valueOut); err != nil {
			return fmt.Errorf("unexpected response value from automation server: %s", string(envelope.Value))
		}
	}
	return nil
}

func mobileError(action string, err error) error {
	if ae, ok := err.(*ActionError); ok {
		return &ActionError{Kind: ae.Kind, Action: action, Err: ae.Err, Attachments: ae.Attachments}
	}
	return &ActionError{Kind: KindActionFailed, Action: action, Err: err}
}

// mobileElement is a handle to a remote element within a mobile session.
type mobileElement struct {
	driver    *mobileDriver
	elementID string
	locator   Locator
}

func (e *mobileElement) path(suffix string) string {
	return e.driver.sessionPath("/element/" + e.elementID + suffix)
}

func (e *mobileElement) Click() error {
	if err := e.driver.do("POST", e.path("/click"), []byte("{}"), nil); err != nil {
		return mobileError(fmt.Sprintf("click %s", e.locator), err)
	}
	return nil
}

func (e *mobileElement) Type(text string) error {
	body, _ := json.Marshal(sendKeysRequest{Text: text})
	if err := e.driver.do("POST", e.path("/value"), body, nil); err != nil {
		return mobileError(fmt.Sprintf("type into %s", e.locator), err)
	}
	return nil
}

func (e *mobileElement) Text() (string, error) {
	var text string
	if err := e.driver.do("GET", e.path("/text"), nil, &text); err != nil {
		return "", mobileError(fmt.Sprintf("read text of %s", e.locator), err)
	}
	return text, nil
}

func (e *mobileElement) Visible() (bool, error) {
	var displayed bool
	if err := e.driver.do("GET", e.path("/displayed"), nil, &displayed); err != nil {
		return false, mobileError(fmt.Sprintf("check visibility of %s", e.locator), err)
	}
	return displayed, nil
}
