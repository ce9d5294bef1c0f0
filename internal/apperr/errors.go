package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation     Kind = "ValidationError"
	KindDuplicateEmail Kind = "DuplicateEmailError"
	KindDuplicateTitle Kind = "DuplicateTitleError"
	KindNotFound       Kind = "NotFoundError"
	KindUnauthorized   Kind = "UnauthorizedError"
	KindCipher         Kind = "CipherError"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	} else {
		msg = string(e.Kind) + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a bare sentinel of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrDuplicateEmail = &Error{Kind: KindDuplicateEmail}
	ErrDuplicateTitle = &Error{Kind: KindDuplicateTitle}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrUnauthorized   = &Error{Kind: KindUnauthorized}
	ErrCipher         = &Error{Kind: KindCipher}
)

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func DuplicateEmail() *Error {
	return &Error{Kind: KindDuplicateEmail, Message: "email is already registered"}
}

func DuplicateTitle() *Error {
	return &Error{Kind: KindDuplicateTitle, Message: "title is already in use"}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Cipher(err error) *Error {
	return &Error{Kind: KindCipher, Message: "cipher failure", Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// MessageOf returns the client-facing message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}
