package jsbridge

import (
	"errors"
	"strings"

	"github.com/cryguy/jsbridge/internal/guard"
)

var (
	// ErrEngineInit is returned by New when the engine runtime or context
	// could not be created or prepared.
	ErrEngineInit = errors.New("jsbridge: engine initialization failed")

	// ErrScript matches every *ScriptError through errors.Is.
	ErrScript = errors.New("jsbridge: script error")

	// ErrInvalidCallable is returned when a host callable name does not
	// resolve at registration time.
	ErrInvalidCallable = errors.New("jsbridge: invalid host callable")

	// ErrFunctionNotFound is returned by Call when the global is not a
	// function.
	ErrFunctionNotFound = errors.New("jsbridge: engine function not found")

	// ErrCallFailed is returned by Call when the engine function threw.
	ErrCallFailed = errors.New("jsbridge: engine call failed")

	// ErrClosed is returned by every Session operation after Close.
	ErrClosed = errors.New("jsbridge: session closed")

	// ErrReentrantAccess is returned when a goroutine that is already
	// inside a session operation calls into the same session again, as a
	// host callable invoked from engine code would.
	ErrReentrantAccess = guard.ErrReentrant

	// ErrUnsupported is returned by the runtime controls that need native
	// engine access when that access is unavailable.
	ErrUnsupported = errors.New("jsbridge: operation unsupported by engine")
)

// ScriptError reports a failure raised by the engine while running script.
// Diagnostic carries the engine's own message text.
type ScriptError struct {
	Op         string
	Diagnostic string
	Err        error
}

func (e *ScriptError) Error() string {
	if e.Diagnostic == "" {
		return "jsbridge: " + e.Op + ": script error"
	}
	return "jsbridge: " + e.Op + ": " + e.Diagnostic
}

func (e *ScriptError) Unwrap() error { return e.Err }

// Is makes every ScriptError match ErrScript.
func (e *ScriptError) Is(target error) bool { return target == ErrScript }

// outOfMemory replaces the engine's diagnostic for an allocation failure,
// which QuickJS raises as a bare null exception.
const outOfMemory = "out of memory"

func scriptError(op string, err error) *ScriptError {
	diag := strings.TrimSpace(err.Error())
	if diag == "" || diag == "null" {
		diag = outOfMemory
	}
	return &ScriptError{Op: op, Diagnostic: diag, Err: err}
}
