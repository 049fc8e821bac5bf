package schematic

import (
	"errors"
	"fmt"
)

// ErrorKind classifies document errors.
type ErrorKind int

const (
	// KindNotFound means the file is missing or no handler exists for its format.
	KindNotFound ErrorKind = iota + 1
	// KindLoadFailed means a handler ran and reported failure.
	KindLoadFailed
	// KindRegistrationRejected means the connectivity graph refused an item.
	KindRegistrationRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindLoadFailed:
		return "load-failed"
	case KindRegistrationRejected:
		return "registration-rejected"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind.
var (
	ErrNotFound             = errors.New("not found")
	ErrLoadFailed           = errors.New("load failed")
	ErrRegistrationRejected = errors.New("registration rejected")
)

// Error carries a kind and a human-readable reason.
type Error struct {
	Kind   ErrorKind
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Reason
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrLoadFailed:
		return e.Kind == KindLoadFailed
	case ErrRegistrationRejected:
		return e.Kind == KindRegistrationRejected
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
