package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind uint8

const (
	Internal Kind = iota
	Unauthenticated
	Forbidden
	NotFound
	Validation
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	}
	return "internal"
}

// HTTPStatus maps a kind onto the response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

const (
	MsgNotAuthorized  = "Not authorized to access this route"
	MsgInternal       = "Server error"
	MsgPostNotFound   = "Post not found"
	MsgUserNotFound   = "User not found"
	MsgCommentMissing = "Comment not found"
)

// Error carries a client facing message. Err holds the cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

var ErrUnauthenticated = New(Unauthenticated, MsgNotAuthorized)

func NewNotFound(message string) *Error {
	return New(NotFound, message)
}

func NewValidation(message string) *Error {
	return New(Validation, message)
}

func NewConflict(message string) *Error {
	return New(Conflict, message)
}

func NewForbidden(message string) *Error {
	return New(Forbidden, message)
}

func NewInternal(err error) *Error {
	return Wrap(Internal, MsgInternal, err)
}

// KindOf returns Internal for errors that are not *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// As extracts the *Error in err's chain, wrapping unknown errors as Internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewInternal(err)
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == NotFound
}
