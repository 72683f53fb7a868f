package errors

import (
	// Go Internal Packages
	stderrors "errors"
	"strings"
)

// Kind classifies an error so callers can decide how to react to it.
type Kind uint8

const (
	Other       Kind = iota // Unclassified error.
	Invalid                 // Invalid input or configuration.
	Internal                // Internal failure of a component.
	Unavailable             // A remote dependency could not be reached.
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Internal:
		return "internal"
	case Unavailable:
		return "unavailable"
	}
	return "other"
}

// Error is a kind-tagged error with an optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// E builds a new *Error.
func E(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in the chain, or Other.
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	return Other
}

// Is, As and New mirror the standard library so callers need a single import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func New(text string) error { return stderrors.New(text) }
