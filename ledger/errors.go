package ledger

import (
	"errors"
)

// Kind classifies ledger failures.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors produced outside of the
	// package.
	KindUnknown Kind = iota
	// KindInsufficientFunds means deposited funds do not exceed the fixed
	// fee or the caller's balance does not cover the withdrawal.
	KindInsufficientFunds
	// KindInvalidArgument means the request itself is malformed, e.g. a zero
	// withdrawal.
	KindInvalidArgument
	// KindOverflow means a credit or funds sum does not fit into a balance.
	KindOverflow
	// KindHost marks failures of the hosting environment (decoding, storage)
	// that happened before or after the engines ran.
	KindHost
)

func (k Kind) String() string {
	switch k {
	case KindInsufficientFunds:
		return "insufficient funds"
	case KindInvalidArgument:
		return "invalid argument"
	case KindOverflow:
		return "balance overflow"
	case KindHost:
		return "host failure"
	default:
		return "unknown"
	}
}

// Error is a ledger failure of a particular Kind.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

var (
	// ErrInsufficientFunds matches every error of KindInsufficientFunds.
	ErrInsufficientFunds = &Error{kind: KindInsufficientFunds}
	// ErrInvalidArgument matches every error of KindInvalidArgument.
	ErrInvalidArgument = &Error{kind: KindInvalidArgument}
	// ErrOverflow matches every error of KindOverflow.
	ErrOverflow = &Error{kind: KindOverflow}
	// ErrHost matches every error of KindHost.
	ErrHost = &Error{kind: KindHost}
)

func newError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// HostError wraps a failure of the hosting environment so that it travels
// through the same error path as engine failures. The original error stays
// available through errors.Unwrap.
func HostError(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) && e.kind == KindHost {
		return err
	}

	return &Error{kind: KindHost, msg: err.Error(), cause: err}
}

// Error implements error interface.
func (e *Error) Error() string {
	if e.msg == "" {
		return e.kind.String()
	}

	return e.kind.String() + ": " + e.msg
}

// Kind returns failure classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// Unwrap returns wrapped host error if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind
}

// KindOf returns the Kind of the first *Error in err's chain or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}

	return KindUnknown
}

// IsCallerCorrectable reports whether err is a validation failure the caller
// can fix by changing the request, as opposed to a host failure.
func IsCallerCorrectable(err error) bool {
	switch KindOf(err) {
	case KindInsufficientFunds, KindInvalidArgument, KindOverflow:
		return true
	default:
		return false
	}
}
