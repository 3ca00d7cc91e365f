package main

import (
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/qaforge/uiharness/config"
	"github.com/qaforge/uiharness/driver"
	"github.com/qaforge/uiharness/framework"
	"github.com/qaforge/uiharness/framework/uitest"
	"github.com/qaforge/uiharness/mockapp"
	"github.com/qaforge/uiharness/report"
	"github.com/qaforge/uiharness/suites"
)

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("uiharness v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	results, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !results.OK() {
		os.Exit(1)
	}
}

func run(params commandParams) (*uitest.Results, error) {
	cfg, err := config.Load(params.configFile)
	if err != nil {
		return nil, err
	}

	var mainDebugLogger framework.Logger = framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}
	// Driver chatter is debug-level output; the configured logLevel can suppress it.
	driverLogger := framework.LoggerAtLevel(
		framework.LoggerWithPrefix(mainDebugLogger, "[driver] "),
		cfg.LogLevel, framework.LogLevelDebug)

	if params.selfTest {
		stop, err := startSelfTestTarget(&cfg, mainDebugLogger)
		if err != nil {
			return nil, err
		}
		defer stop()
	}

	drv, err := driver.New(cfg, driverLogger)
	if err != nil {
		return nil, err
	}
	defer func() {
		fmt.Println("Closing driver session")
		if err := drv.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close driver session: %s\n", err)
		}
	}()

	store, err := report.NewStore(params.attachmentsDir)
	if err != nil {
		return nil, err
	}
	recorder := report.NewRecorder(drv, store)

	var testLogger uitest.TestLogger
	consoleLogger := uitest.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	if params.jUnitFile == "" {
		testLogger = consoleLogger
	} else {
		testLogger = &uitest.MultiTestLogger{Loggers: []uitest.TestLogger{
			consoleLogger,
			uitest.NewJUnitTestLogger(params.jUnitFile, cfg.Describe(), params.filters),
		}}
	}

	results := suites.RunUITestSuite(cfg, drv, recorder, params.filters, testLogger)

	fmt.Println()
	if logErr := testLogger.EndLog(results); logErr != nil {
		return nil, fmt.Errorf("error writing log: %v", logErr)
	}

	return &results, nil
}

// startSelfTestTarget serves the built-in mock application on a loopback port
// and points the configuration at it, so the suite can run with no external
// target. The returned function stops the server.
func startSelfTestTarget(cfg *config.Configuration, debugLogger framework.Logger) (func(), error) {
	var handler http.Handler
	switch cfg.Platform {
	case config.PlatformMobile:
		handler = mockapp.NewAppiumService(mockapp.DemoScreen(), debugLogger)
	default:
		handler = mockapp.NewWebApp(debugLogger)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("cannot start mock application: %w", err)
	}
	server := &http.Server{Handler: handler}
	go func() { _ = server.Serve(listener) }()

	url := "http://" + listener.Addr().String()
	fmt.Printf("Self-test mode: serving mock application at %s\n", url)

	switch cfg.Platform {
	case config.PlatformMobile:
		cfg.Mobile.ServerURL = url
	default:
		cfg.Target = url
		if cfg.Credentials == nil {
			cfg.Credentials = map[string]string{
				"username": mockapp.ValidUsername,
				"password": mockapp.ValidPassword,
			}
		}
	}

	return func() { _ = server.Close() }, nil
}
