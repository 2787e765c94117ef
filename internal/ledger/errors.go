// Package ledger applies money movements to accounts while holding three
// promises: no balance ever violates its account's debit rules, every applied
// operation leaves a matching log entry, and replaying an idempotency key
// never applies the operation twice.
package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure. Callers branch on the kind, not on
// the message text.
type Kind string

const (
	KindInvalidAmount     Kind = "invalid_amount"
	KindInvalidRequest    Kind = "invalid_request"
	KindAccountNotFound   Kind = "account_not_found"
	KindAccountClosed     Kind = "account_closed"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindBusy              Kind = "busy"
	KindConflict          Kind = "conflict"
	KindUnexpected        Kind = "unexpected"
)

// Error is a classified ledger failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError classifies an underlying error
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classification from an error, defaulting to
// KindUnexpected for unclassified errors.
func KindOf(err error) Kind {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind
	}
	return KindUnexpected
}

// IsKind reports whether the error carries the given classification
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
