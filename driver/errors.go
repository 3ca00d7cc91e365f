package driver

import (
	"errors"
	"fmt"

	"github.com/qaforge/uiharness/config"
)

// ErrorKind classifies an ActionError. Every ActionError has a non-empty kind.
type ErrorKind string

const (
	KindTimeout            ErrorKind = "timeout"
	KindLocatorNotFound    ErrorKind = "locator-not-found"
	KindDriverDisconnected ErrorKind = "driver-disconnected"
	KindActionFailed       ErrorKind = "action-failed"
	KindAssertionFailed    ErrorKind = "assertion-failed"
)

// InitializationError indicates that the automation session could not be started.
// It aborts the run before any test executes.
type InitializationError struct {
	Platform config.Platform
	Err      error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("cannot initialize %s driver: %s", e.Platform, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// ActionError is the normalized failure type for everything that can go wrong
// after the session is up: element lookups, interactions, waits.
type ActionError struct {
	Kind   ErrorKind
	Action string
	Err    error

	// Attachments are paths of diagnostic files (screenshot, page source) captured
	// at failure time, filled in by the report package.
	Attachments []string
}

func (e *ActionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Action, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Action, e.Kind, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// NewActionError wraps err with a kind and the name of the failed action. If err
// is already an ActionError its kind is preserved and only the action name is
// extended, so classification survives layering.
func NewActionError(kind ErrorKind, action string, err error) *ActionError {
	var ae *ActionError
	if errors.As(err, &ae) {
		return &ActionError{Kind: ae.Kind, Action: action + ": " + ae.Action, Err: ae.Err,
			Attachments: ae.Attachments}
	}
	return &ActionError{Kind: kind, Action: action, Err: err}
}

// AsActionError extracts an ActionError from err, or normalizes err into one with
// kind action-failed.
func AsActionError(action string, err error) *ActionError {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae
	}
	return &ActionError{Kind: KindActionFailed, Action: action, Err: err}
}
