// Package errors defines the error kinds shared across the songbook packages.
//
// Every typed error unwraps to one of three sentinels, so callers can branch
// with errors.Is on the kind and errors.As on the detail:
//
//	ErrInvalidInput  ValidationError, ParseError
//	ErrNotFound      NotFoundError
//	ErrUnsupported   UnsupportedError
//
// IOError unwraps to the operating-system error it carries.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing song file or config file.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput reports content or arguments the songbook refuses.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported reports a directive, format or option outside what is handled.
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string // "document", "config"
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError rejects a single field of caller input, such as a title
// or capo value, a path argument or a config key.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError records the file operation that failed.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError reports content that could not be decoded. Line is 1-based and
// zero when the position is unknown.
type ParseError struct {
	Format  string // "chordpro", "config"
	Path    string
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	where := e.Path
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if where == "" {
		return fmt.Sprintf("parse %s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("parse %s %s: %s", e.Format, where, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError names something the songbook recognizes as a request but
// does not handle, for example a directive outside the vocabulary.
type UnsupportedError struct {
	Feature string // "directive", "log level"
	Name    string
}

func (e *UnsupportedError) Error() string {
	if e.Name == "" {
		return "unsupported " + e.Feature
	}
	return fmt.Sprintf("unsupported %s %q", e.Feature, e.Name)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func NewIO(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Err: err}
}

func NewParse(format, path, message string) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message}
}

func NewUnsupported(feature, name string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Name: name}
}

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted prefix.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is and As re-export the standard helpers so callers need one errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
