package request

import (
	"errors"
	"fmt"
)

const codeInvalidRequest = "invalidRequest"

// RequestError describes a rejected service-request payload.
type RequestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newInvalid(format string, args ...interface{}) *RequestError {
	return &RequestError{Code: codeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// IsInvalid reports whether err rejects the caller's payload.
func IsInvalid(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Code == codeInvalidRequest
}
