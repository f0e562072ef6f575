package zonemerge

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError represents a structural error in a template: an unclosed,
// mismatched or misplaced zone or row tag.
type ParseError struct {
	Message  string
	Token    string
	Position int
	Line     int
	Column   int
}

func (e *ParseError) Error() string {
	var where string
	if e.Line > 0 {
		where = fmt.Sprintf("line %d, column %d", e.Line, e.Column)
	} else {
		where = fmt.Sprintf("position %d", e.Position)
	}
	if e.Token != "" {
		return fmt.Sprintf("parse error at %s near '%s': %s", where, e.Token, e.Message)
	}
	return fmt.Sprintf("parse error at %s: %s", where, e.Message)
}

// NewParseError creates a new parse error
func NewParseError(message, token string, position, line, column int) error {
	return &ParseError{
		Message:  message,
		Token:    token,
		Position: position,
		Line:     line,
		Column:   column,
	}
}

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError represents one or more problems with merge input data
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation error"
	}

	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation error: %s - %s", e.Issues[0].Field, e.Issues[0].Message)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d validation issues:", len(e.Issues)))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("  %s: %s", issue.Field, issue.Message))
	}
	return strings.Join(parts, "\n")
}

// add records an issue; fields are formatted like "zones[2].zonekeys.Name".
func (e *ValidationError) add(field, format string, args ...interface{}) {
	e.Issues = append(e.Issues, ValidationIssue{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// err returns e, or nil when no issues were recorded.
func (e *ValidationError) err() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

// NotLoadedError is returned when a merge is attempted before its template or
// input data has been loaded.
type NotLoadedError struct {
	What string
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("%s has not been loaded", e.What)
}

// IOError represents a failure reading or writing a template, data or output file
type IOError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *IOError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("io error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("io error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("io error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("io error during %s", e.Operation)
}

func (e *IOError) Unwrap() error {
	return e.Cause
}

// NewIOError creates a new IO error
func NewIOError(operation, path string, cause error) error {
	return &IOError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Errors returns the collected errors.
func (m *MultiError) Errors() []error {
	return m.errors
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// ContextError adds context to an existing error
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	var contextParts []string
	for k, v := range e.Context {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
	}

	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

// IsParseError checks if an error is or wraps a parse error
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsValidationError checks if an error is or wraps a validation error
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotLoadedError checks if an error is or wraps a not-loaded error
func IsNotLoadedError(err error) bool {
	var target *NotLoadedError
	return errors.As(err, &target)
}

// IsIOError checks if an error is or wraps an IO error
func IsIOError(err error) bool {
	var target *IOError
	return errors.As(err, &target)
}
