package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies expected user-facing failures
type ErrorKind int

// Error kinds
const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindInvalidCredentials
	KindInsufficientFunds
	KindInsufficientHoldings
	KindQuoteUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindInsufficientFunds:
		return "InsufficientFunds"
	case KindInsufficientHoldings:
		return "InsufficientHoldings"
	case KindQuoteUnavailable:
		return "QuoteUnavailable"
	default:
		return "Unknown"
	}
}

// Error is an expected outcome of user input. Message is safe to show to the user.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: k}) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// NewValidationError creates a ValidationError
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewInvalidCredentials creates an InvalidCredentials error
func NewInvalidCredentials(message string) *Error {
	return &Error{Kind: KindInvalidCredentials, Message: message}
}

// NewInsufficientFunds creates an InsufficientFunds error
func NewInsufficientFunds(message string) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: message}
}

// NewInsufficientHoldings creates an InsufficientHoldings error
func NewInsufficientHoldings(message string) *Error {
	return &Error{Kind: KindInsufficientHoldings, Message: message}
}

// NewQuoteUnavailable creates a QuoteUnavailable error
func NewQuoteUnavailable(message string) *Error {
	return &Error{Kind: KindQuoteUnavailable, Message: message}
}

// KindOf returns the kind of a domain error anywhere in err's chain,
// or KindUnknown for infrastructure failures.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// Sentinel errors returned by repositories and stores
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrMultipleUsers   = errors.New("multiple users match")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrSessionNotFound = errors.New("session not found")
)
