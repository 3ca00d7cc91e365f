// Package config loads and validates the harness configuration document.
//
// The document is JSON (or YAML, by file extension) with the recognized top-level
// keys {platform, target, timeout, credentials, logLevel, web, mobile}. Environment
// variables prefixed with UIHARNESS_ override file values. The result is an
// immutable Configuration; all loading and validation failures are reported as
// *ConfigurationError before any driver is constructed.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qaforge/uiharness/framework"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Platform selects which kind of automation driver the factory constructs.
type Platform string

const (
	PlatformWeb    Platform = "web"
	PlatformMobile Platform = "mobile"
)

const defaultTimeout = 10 * time.Second

const envPrefix = "UIHARNESS_"

// WebOptions are settings that only apply when Platform is "web".
type WebOptions struct {
	// Browser is the browser family to launch: "chrome", "chromium", or "edge".
	Browser string

	// Headless launches the browser without a visible window.
	Headless bool

	// WindowWidth and WindowHeight set the viewport; zero means the engine default.
	WindowWidth  int
	WindowHeight int

	// DebuggerURL, when set, attaches to an already-running browser instead of
	// launching one.
	DebuggerURL string
}

// MobileOptions are settings that only apply when Platform is "mobile".
type MobileOptions struct {
	// ServerURL is the base URL of the Appium-compatible automation server.
	ServerURL string

	// DesiredCapabilities is passed verbatim in the new-session request.
	DesiredCapabilities map[string]interface{}
}

// Configuration is the validated, immutable result of loading a config document.
// Construct it only through Load or LoadData.
type Configuration struct {
	Platform    Platform
	Target      string
	Timeout     time.Duration
	Credentials map[string]string
	LogLevel    framework.LogLevel
	Web         WebOptions
	Mobile      MobileOptions
}

// ConfigurationError indicates a bad or missing configuration value.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error in %q: %s", e.Field, e.Message)
}

func configError(field, format string, args ...interface{}) error {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// configDocument is the on-disk shape. Timeout is a number of seconds, matching
// the documented file format; fractional values are allowed. It is a pointer so
// an absent key can be told apart from an explicit zero.
type configDocument struct {
	Platform       string                 `json:"platform" yaml:"platform"`
	Target         string                 `json:"target" yaml:"target"`
	TimeoutSeconds *float64               `json:"timeout" yaml:"timeout"`
	Credentials    map[string]string      `json:"credentials" yaml:"credentials"`
	LogLevel       string                 `json:"logLevel" yaml:"logLevel"`
	Web            webDocument            `json:"web" yaml:"web"`
	Mobile         mobileDocument         `json:"mobile" yaml:"mobile"`
	Extra          map[string]interface{} `json:"-" yaml:"-"`
}

type webDocument struct {
	Browser      string `json:"browser" yaml:"browser"`
	Headless     bool   `json:"headless" yaml:"headless"`
	WindowWidth  int    `json:"windowWidth" yaml:"windowWidth"`
	WindowHeight int    `json:"windowHeight" yaml:"windowHeight"`
	DebuggerURL  string `json:"debuggerUrl" yaml:"debuggerUrl"`
}

type mobileDocument struct {
	ServerURL           string                 `json:"serverUrl" yaml:"serverUrl"`
	DesiredCapabilities map[string]interface{} `json:"desiredCapabilities" yaml:"desiredCapabilities"`
}

var recognizedKeys = []string{"platform", "target", "timeout", "credentials", "logLevel", "web", "mobile"}

// Load reads the configuration document at path. Files ending in .yaml or .yml are
// parsed as YAML; anything else is parsed as JSON.
func Load(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, configError("", "cannot read %s: %s", path, err)
	}
	isYAML := false
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		isYAML = true
	}
	return LoadData(data, isYAML)
}

// LoadData parses and validates a configuration document that has already been read.
func LoadData(data []byte, isYAML bool) (Configuration, error) {
	doc, err := parseDocument(data, isYAML)
	if err != nil {
		return Configuration{}, err
	}
	applyEnvOverrides(&doc)
	return validate(doc)
}

func parseDocument(data []byte, isYAML bool) (configDocument, error) {
	var doc configDocument

	// Parse into a generic map first so unrecognized keys can be rejected: the
	// configuration key set is closed by design of the file format.
	var raw map[string]interface{}
	if isYAML {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return doc, configError("", "malformed YAML: %s", err)
		}
	} else {
		if err := json.Unmarshal(data, &raw); err != nil {
			return doc, configError("", "malformed JSON: %s", err)
		}
	}
	unknown := maps.Keys(raw)
	unknown = slices.DeleteFunc(unknown, func(k string) bool {
		return slices.Contains(recognizedKeys, k)
	})
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return doc, configError("", "unrecognized keys: %s", strings.Join(unknown, ", "))
	}

	if isYAML {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, configError("", "malformed YAML: %s", err)
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return doc, configError("", "malformed JSON: %s", err)
		}
	}
	return doc, nil
}

func applyEnvOverrides(doc *configDocument) {
	if v := os.Getenv(envPrefix + "PLATFORM"); v != "" {
		doc.Platform = v
	}
	if v := os.Getenv(envPrefix + "TARGET"); v != "" {
		doc.Target = v
	}
	if v := os.Getenv(envPrefix + "TIMEOUT"); v != "" {
		var secs float64
		if _, err := fmt.Sscanf(v, "%g", &secs); err == nil {
			doc.TimeoutSeconds = &secs
		}
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		doc.LogLevel = v
	}
	if v := os.Getenv(envPrefix + "WEB_BROWSER"); v != "" {
		doc.Web.Browser = v
	}
	if v := os.Getenv(envPrefix + "MOBILE_SERVER_URL"); v != "" {
		doc.Mobile.ServerURL = v
	}
}

func validate(doc configDocument) (Configuration, error) {
	if doc.Platform == "" {
		return Configuration{}, configError("platform", "required value is missing")
	}
	platform := Platform(strings.ToLower(doc.Platform))
	switch platform {
	case PlatformWeb, PlatformMobile:
	default:
		return Configuration{}, configError("platform", "unrecognized platform %q", doc.Platform)
	}

	if doc.Target == "" {
		return Configuration{}, configError("target", "required value is missing")
	}

	// An absent timeout gets the default; an explicit zero is rejected rather
	// than silently treated as unset.
	timeout := defaultTimeout
	if doc.TimeoutSeconds != nil {
		if *doc.TimeoutSeconds <= 0 {
			return Configuration{}, configError("timeout", "must be greater than zero")
		}
		timeout = time.Duration(*doc.TimeoutSeconds * float64(time.Second))
	}

	if platform == PlatformWeb {
		switch strings.ToLower(doc.Web.Browser) {
		case "", "chrome", "chromium", "edge":
		default:
			return Configuration{}, configError("web.browser", "unsupported browser %q", doc.Web.Browser)
		}
	}

	if platform == PlatformMobile && doc.Mobile.ServerURL == "" {
		return Configuration{}, configError("mobile.serverUrl", "required for mobile platform")
	}

	var credentials map[string]string
	if len(doc.Credentials) > 0 {
		credentials = make(map[string]string, len(doc.Credentials))
		for k, v := range doc.Credentials {
			credentials[k] = v
		}
	}

	var desiredCaps map[string]interface{}
	if len(doc.Mobile.DesiredCapabilities) > 0 {
		desiredCaps = make(map[string]interface{}, len(doc.Mobile.DesiredCapabilities))
		for k, v := range doc.Mobile.DesiredCapabilities {
			desiredCaps[k] = v
		}
	}

	return Configuration{
		Platform:    platform,
		Target:      doc.Target,
		Timeout:     timeout,
		Credentials: credentials,
		LogLevel:    framework.ParseLogLevel(doc.LogLevel),
		Web: WebOptions{
			Browser:      strings.ToLower(doc.Web.Browser),
			Headless:     doc.Web.Headless,
			WindowWidth:  doc.Web.WindowWidth,
			WindowHeight: doc.Web.WindowHeight,
			DebuggerURL:  doc.Web.DebuggerURL,
		},
		Mobile: MobileOptions{
			ServerURL:           strings.TrimSuffix(doc.Mobile.ServerURL, "/"),
			DesiredCapabilities: desiredCaps,
		},
	}, nil
}

// Credential returns the named credential value, if present.
func (c Configuration) Credential(name string) (string, bool) {
	v, ok := c.Credentials[name]
	return v, ok
}

// Describe returns a short human-readable summary for reports.
func (c Configuration) Describe() string {
	return fmt.Sprintf("%s target=%s timeout=%s", c.Platform, c.Target, c.Timeout)
}
