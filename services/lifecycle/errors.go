package lifecycle

import (
	"errors"
	"fmt"
)

// Error codes for lifecycle violations.
const (
	CodeNotAssignedProvider = "notAssignedProvider"
	CodeTerminalState       = "terminalState"
	CodeInvalidCancellation = "invalidCancellation"
)

// LifecycleError reports an illegal transition attempt. These are expected
// outcomes under concurrent clients, not fatal conditions.
type LifecycleError struct {
	Code    string
	Message string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, msg string) error {
	return &LifecycleError{Code: code, Message: msg}
}

// IsNotAssignedProvider reports whether err is a wrong-actor failure.
func IsNotAssignedProvider(err error) bool {
	return hasCode(err, CodeNotAssignedProvider)
}

// IsTerminalState reports whether err is a no-forward-transition failure.
func IsTerminalState(err error) bool {
	return hasCode(err, CodeTerminalState)
}

// IsInvalidCancellation reports whether err is an illegal cancellation.
func IsInvalidCancellation(err error) bool {
	return hasCode(err, CodeInvalidCancellation)
}

func hasCode(err error, code string) bool {
	var le *LifecycleError
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}
