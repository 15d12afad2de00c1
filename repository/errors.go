package repository

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Kind classifies repository failures so callers can pick a status code.
type Kind int

const (
	KindInvalidArgument Kind = iota + 1
	KindNotFound
	KindConflict
	KindDatabase
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindDatabase:
		return "DatabaseError"
	case KindExternal:
		return "ExternalServiceError"
	}
	return "Unknown"
}

// Error is the failure type returned by every repository operation.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidArgument(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Database(err error, msg string) error {
	return &Error{Kind: KindDatabase, Msg: msg, Err: errors.WithStack(err)}
}

func External(err error, msg string) error {
	return &Error{Kind: KindExternal, Msg: msg, Err: errors.WithStack(err)}
}

// KindOf reports the Kind of err; errors that did not come from this package
// count as database errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDatabase
}

// Message returns the client-safe message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}

// wrap keeps repository errors as they are and turns anything else into a
// database error labelled msg. Duplicate keys become conflicts.
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: KindConflict, Msg: "record already exists", Err: err}
	}
	return Database(err, msg)
}

func notFoundOr(err error, notFound error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return wrap(err, msg)
}
