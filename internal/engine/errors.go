package engine

import (
	"errors"
	"fmt"
)

// Kind categorizes engine failures. Kinds are part of the device and
// admin API contract: callers branch on them, so the set is closed.
type Kind string

const (
	KindUnknownDeviceType   Kind = "UNKNOWN_DEVICE_TYPE"
	KindDeviceNotRegistered Kind = "DEVICE_NOT_REGISTERED"
	KindUnknownTag          Kind = "UNKNOWN_TAG"
	KindNoActiveSession     Kind = "NO_ACTIVE_SESSION"
	KindAmbiguousSchedule   Kind = "AMBIGUOUS_SCHEDULE"
	KindAlreadyCheckedIn    Kind = "ALREADY_CHECKED_IN"
	KindAlreadyCheckedOut   Kind = "ALREADY_CHECKED_OUT"
	KindNoCheckInRecord     Kind = "NO_CHECKIN_RECORD"
	KindPersistenceFailure  Kind = "PERSISTENCE_FAILURE"
)

// Error is the structured failure returned by engine operations.
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

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// storageError wraps a repository failure as PersistenceFailure so raw
// storage errors never cross the device boundary.
func storageError(err error) *Error {
	return &Error{Kind: KindPersistenceFailure, Message: "storage operation failed", Err: err}
}

// DeviceMessage formats an error for a device reply: kind and message
// only, never the wrapped cause. Non-engine errors collapse to a
// generic message so internals stay on our side of the socket.
func DeviceMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return "internal error"
}

// KindOf returns the kind of an engine error, or "" for other errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
