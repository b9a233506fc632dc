package status

import (
	"errors"
	"fmt"
)

var (
	ErrTransport       = errors.New("transport failure")
	ErrServerRejection = errors.New("server rejection")
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrValidation      = errors.New("validation failure")
)

type Kind int

const (
	KindTransport Kind = iota + 1
	KindServerRejection
	KindShapeMismatch
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServerRejection:
		return "server_rejection"
	case KindShapeMismatch:
		return "shape_mismatch"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindServerRejection:
		return ErrServerRejection
	case KindShapeMismatch:
		return ErrShapeMismatch
	case KindValidation:
		return ErrValidation
	}
	return nil
}

// Error carries a user-facing Message alongside the underlying cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func Transport(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Message: "network error", Err: err}
}

func Rejected(op, message string) *Error {
	return &Error{Kind: KindServerRejection, Op: op, Message: message}
}

func Shape(op, message string) *Error {
	return &Error{Kind: KindShapeMismatch, Op: op, Message: message}
}

func Invalid(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// MessageOf returns the user-facing message of err, falling back to err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
