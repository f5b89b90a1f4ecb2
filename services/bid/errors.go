package bid

import (
	"errors"
	"fmt"
)

// Error codes for bid matching failures.
const (
	CodeServiceNotOpen = "serviceNotOpen"
	CodeInvalidAmount  = "invalidAmount"
	CodeBidNotFound    = "bidNotFound"
)

// BidError reports a rejected bid operation. Like lifecycle errors these are
// expected outcomes under concurrent clients, not fatal conditions.
type BidError struct {
	Code    string
	Message string
}

func (e *BidError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, msg string) error {
	return &BidError{Code: code, Message: msg}
}

// ErrNotOwner marks an operation attempted by someone other than the
// request's customer. Handlers translate it to a permission failure.
var ErrNotOwner = errors.New("service request belongs to another customer")

// IsServiceNotOpen reports whether err is a bid against a non-open service.
func IsServiceNotOpen(err error) bool {
	return hasCode(err, CodeServiceNotOpen)
}

// IsInvalidAmount reports whether err is a rejected bid amount.
func IsInvalidAmount(err error) bool {
	return hasCode(err, CodeInvalidAmount)
}

// IsBidNotFound reports whether err is a missing-bid failure.
func IsBidNotFound(err error) bool {
	return hasCode(err, CodeBidNotFound)
}

func hasCode(err error, code string) bool {
	var be *BidError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
