package driver

// Wire types for the subset of the W3C WebDriver protocol spoken to an
// Appium-compatible automation server. The element ID key is the magic constant
// defined by the WebDriver specification.

const webElementIdentifier = "element-6066-11e4-a52e-4f735466cecf"

type wireCapability map[string]interface{}

type wireCapabilities struct {
	AlwaysMatch wireCapability   `json:"alwaysMatch"`
	FirstMatch  []wireCapability `json:"firstMatch,omitempty"`
}

type newSessionRequest struct {
	Capabilities wireCapabilities `json:"capabilities"`
}

type newSessionValue struct {
	SessionID    string                 `json:"sessionId"`
	Capabilities map[string]interface{} `json:"capabilities"`
}

type findElementRequest struct {
	Using string `json:"using"`
	Value string `json:"value"`
}

type wireElement map[string]string

func (e wireElement) id() string { return e[webElementIdentifier] }

type navigateRequest struct {
	URL string `json:"url"`
}

type sendKeysRequest struct {
	Text string `json:"text"`
}

type executeRequest struct {
	Script string        `json:"script"`
	Args   []interface{} `json:"args"`
}

// wireError is the "value" of a non-2xx WebDriver response.
type wireError struct {
	ErrorCode  string `json:"error"`
	Message    string `json:"message"`
	Stacktrace string `json:"stacktrace,omitempty"`
}

func (e wireError) Error() string {
	if e.Message == "" {
		return e.ErrorCode
	}
	return e.ErrorCode + ": " + e.Message
}

// kind maps WebDriver protocol error codes onto the harness error taxonomy.
func (e wireError) kind() ErrorKind {
	switch e.ErrorCode {
	case "no such element", "stale element reference":
		return KindLocatorNotFound
	case "timeout", "script timeout":
		return KindTimeout
	case "invalid session id", "session not created", "unknown server-side error":
		return KindDriverDisconnected
	default:
		return KindActionFailed
	}
}

// WebDriver locator strategy names differ from the harness's short names.
func wireStrategyFor(locator Locator) (string, error) {
	switch locator.Strategy {
	case ByCSS:
		return "css selector", nil
	case ByXPath:
		return "xpath", nil
	case ByID:
		return "id", nil
	case ByAccessibilityID:
		return "accessibility id", nil
	default:
		return "", &ActionError{Kind: KindActionFailed,
			Action: "find " + locator.String(),
			Err:    errUnknownStrategy(locator.Strategy)}
	}
}

type errUnknownStrategy Strategy

func (e errUnknownStrategy) Error() string {
	return "unrecognized locator strategy \"" + string(e) + "\""
}
