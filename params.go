package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/qaforge/uiharness/framework/uitest"
)

type commandParams struct {
	configFile     string
	filters        uitest.RegexFilters
	debug          bool
	debugAll       bool
	jUnitFile      string
	attachmentsDir string
	selfTest       bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.configFile, "config", "", "path to the configuration file (JSON or YAML)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringVar(&c.attachmentsDir, "attachments", "attachments",
		"directory for failure screenshots and page sources")
	fs.BoolVar(&c.selfTest, "selftest", false,
		"run against the built-in mock application instead of the configured target")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.configFile == "" {
		fmt.Fprintln(os.Stderr, "-config is required")
		fs.Usage()
		return false
	}
	return true
}
