package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qaforge/uiharness/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDataMinimalWebConfig(t *testing.T) {
	cfg, err := LoadData([]byte(`{"platform": "web", "target": "https://example.com"}`), false)
	require.NoError(t, err)

	assert.Equal(t, PlatformWeb, cfg.Platform)
	assert.Equal(t, "https://example.com", cfg.Target)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, framework.LogLevelInfo, cfg.LogLevel)
}

func TestLoadDataFullConfig(t *testing.T) {
	data := []byte(`{
		"platform": "web",
		"target": "https://example.com",
		"timeout": 5,
		"credentials": {"username": "qa", "password": "secret"},
		"logLevel": "debug",
		"web": {"browser": "Chrome", "headless": true, "windowWidth": 1280, "windowHeight": 800}
	}`)
	cfg, err := LoadData(data, false)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, framework.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, "chrome", cfg.Web.Browser)
	assert.True(t, cfg.Web.Headless)
	assert.Equal(t, 1280, cfg.Web.WindowWidth)

	username, ok := cfg.Credential("username")
	assert.True(t, ok)
	assert.Equal(t, "qa", username)

	_, ok = cfg.Credential("token")
	assert.False(t, ok)
}

func TestLoadDataFractionalTimeout(t *testing.T) {
	cfg, err := LoadData([]byte(`{"platform": "web", "target": "t", "timeout": 0.5}`), false)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Timeout)
}

func TestLoadDataMobileConfig(t *testing.T) {
	data := []byte(`{
		"platform": "mobile",
		"target": "com.example.app",
		"mobile": {
			"serverUrl": "http://localhost:4723/",
			"desiredCapabilities": {"appium:platformName": "Android"}
		}
	}`)
	cfg, err := LoadData(data, false)
	require.NoError(t, err)

	assert.Equal(t, PlatformMobile, cfg.Platform)
	assert.Equal(t, "http://localhost:4723", cfg.Mobile.ServerURL) // trailing slash removed
	assert.Equal(t, "Android", cfg.Mobile.DesiredCapabilities["appium:platformName"])
}

func TestLoadDataYAML(t *testing.T) {
	data := []byte(`
platform: web
target: https://example.com
timeout: 2
credentials:
  username: qa
`)
	cfg, err := LoadData(data, true)
	require.NoError(t, err)

	assert.Equal(t, PlatformWeb, cfg.Platform)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	username, _ := cfg.Credential("username")
	assert.Equal(t, "qa", username)
}

func TestLoadDataErrors(t *testing.T) {
	badConfigs := map[string][]byte{
		"malformed JSON":       []byte(`{`),
		"missing platform":     []byte(`{"target": "t"}`),
		"unknown platform":     []byte(`{"platform": "desktop", "target": "t"}`),
		"missing target":       []byte(`{"platform": "web"}`),
		"negative timeout":     []byte(`{"platform": "web", "target": "t", "timeout": -1}`),
		"zero timeout":         []byte(`{"platform": "web", "target": "t", "timeout": 0}`),
		"unknown browser":      []byte(`{"platform": "web", "target": "t", "web": {"browser": "netscape"}}`),
		"unrecognized keys":    []byte(`{"platform": "web", "target": "t", "tiemout": 5}`),
		"mobile w/o serverUrl": []byte(`{"platform": "mobile", "target": "com.example.app"}`),
	}
	for name, data := range badConfigs {
		t.Run(name, func(t *testing.T) {
			_, err := LoadData(data, false)
			require.Error(t, err)
			var ce *ConfigurationError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestLoadDataAbsentTimeoutGetsDefault(t *testing.T) {
	// only a missing key means "use the default"; an explicit 0 is an error
	cfg, err := LoadData([]byte(`{"platform": "web", "target": "t"}`), false)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Timeout)

	_, err = LoadData([]byte(`{"platform": "web", "target": "t", "timeout": 0}`), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestLoadDataUnrecognizedKeysAreNamed(t *testing.T) {
	_, err := LoadData([]byte(`{"platform": "web", "target": "t", "bogus1": 1, "bogus2": 2}`), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus1, bogus2")
}

func TestLoadReadsFileByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"platform": "web", "target": "t"}`), 0600))
	cfg, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, PlatformWeb, cfg.Platform)

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("platform: web\ntarget: t\n"), 0600))
	cfg, err = Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, PlatformWeb, cfg.Platform)

	_, err = Load(filepath.Join(dir, "nonexistent.json"))
	require.Error(t, err)
	var ce *ConfigurationError
	assert.ErrorAs(t, err, &ce)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("UIHARNESS_TARGET", "https://override.example.com")
	t.Setenv("UIHARNESS_TIMEOUT", "3")
	t.Setenv("UIHARNESS_LOG_LEVEL", "error")

	cfg, err := LoadData([]byte(`{"platform": "web", "target": "https://example.com", "timeout": 9}`), false)
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com", cfg.Target)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, framework.LogLevelError, cfg.LogLevel)
}
