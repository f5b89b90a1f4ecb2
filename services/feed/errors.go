package feed

import (
	"errors"
	"fmt"
)

const codeTransient = "transient"

// SyncError describes a failure to bring the feed snapshot up to date. The
// snapshot the caller already has stays valid; the usual response is to retry.
type SyncError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func newTransient(message string, err error) *SyncError {
	return &SyncError{Code: codeTransient, Message: message, Err: err}
}

// IsTransient reports whether err is a retryable sync failure.
func IsTransient(err error) bool {
	var se *SyncError
	return errors.As(err, &se) && se.Code == codeTransient
}
