package app

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindStorageFailure ErrorKind = iota
	KindNotFound
	KindQuotaExceeded
	KindPayloadTooLarge
	KindConflict
	KindInvalid
	KindUnauthorized
	KindTooManyRequests
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	case KindUnauthorized:
		return "unauthorized"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "storage_failure"
	}
}

// Error is the outcome of a failed operation. Detail is safe to show to the
// caller; Err is kept for logs only.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// storageFailure hides cause from the caller behind the generic detail.
func storageFailure(detail string, cause error) *Error {
	return &Error{Kind: KindStorageFailure, Detail: detail, Err: cause}
}

// KindOf classifies err; anything that is not an *Error is a storage failure.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorageFailure
}

// DetailOf returns the caller-facing message for err.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "Internal server error"
}
