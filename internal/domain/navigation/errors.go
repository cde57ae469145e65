package navigation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrUninitialized is returned when a command arrives before any session was built.
	ErrUninitialized = errors.New("navigation session is not initialized")

	// ErrStaleSession is returned when a session was rebuilt while a request
	// bound to it was in flight. The request's result is discarded.
	ErrStaleSession = errors.New("navigation session was rebuilt during the request")

	// ErrNotFound is returned by repositories when no record exists.
	ErrNotFound = errors.New("not found")

	// ErrLocationInactive is returned when a fix reaches a location provider
	// that is not running, for example after navigation stopped location updates.
	ErrLocationInactive = errors.New("location provider is not accepting fixes")
)

// ValidationError reports a malformed request from the host.
type ValidationError struct {
	Message string
	Err     error
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// WrapValidationError reports err as a malformed request, keeping it
// reachable through errors.Is.
func WrapValidationError(err error) *ValidationError {
	return &ValidationError{Message: err.Error(), Err: err}
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TranslationError reports that a value could not be mapped between the
// engine model and the interchange model. It is fatal to the call in progress.
type TranslationError struct {
	Path   []string
	Value  string
	Reason string
}

// NewTranslationError creates a TranslationError for the field at path.
func NewTranslationError(reason, value string, path ...string) *TranslationError {
	return &TranslationError{Path: path, Value: value, Reason: reason}
}

func (e *TranslationError) Error() string {
	var b strings.Builder
	b.WriteString("translation error")
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Value != "" {
		b.WriteString(fmt.Sprintf(" (%q)", e.Value))
	}
	return b.String()
}

// Prefix returns a copy of the error with path segments prepended.
func (e *TranslationError) Prefix(segments ...string) *TranslationError {
	path := make([]string, 0, len(segments)+len(e.Path))
	path = append(path, segments...)
	path = append(path, e.Path...)
	return &TranslationError{Path: path, Value: e.Value, Reason: e.Reason}
}

// EngineError reports that the navigation engine rejected a call.
type EngineError struct {
	Op  string
	Err error
}

// NewEngineError wraps an engine failure for the given operation.
func NewEngineError(op string, err error) *EngineError {
	return &EngineError{Op: op, Err: err}
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error during %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Timeout reports whether the engine call failed because a deadline passed.
func (e *EngineError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// LifecyclePhase names the rebuild step a LifecycleError occurred in.
type LifecyclePhase string

const (
	PhaseLocationProvider LifecyclePhase = "location_provider"
	PhaseEngine           LifecyclePhase = "engine"
	PhasePresentation     LifecyclePhase = "presentation"
)

// LifecycleError reports that a session rebuild could not complete. The
// controller keeps its previous state when this is returned.
type LifecycleError struct {
	Phase LifecyclePhase
	Mode  LocationMode
	Err   error
}

// NewLifecycleError creates a LifecycleError.
func NewLifecycleError(phase LifecyclePhase, mode LocationMode, err error) *LifecycleError {
	return &LifecycleError{Phase: phase, Mode: mode, Err: err}
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("session rebuild failed at %s (location mode %s): %v", e.Phase, e.Mode, e.Err)
}

func (e *LifecycleError) Unwrap() error { return e.Err }
