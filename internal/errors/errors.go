// Package errors defines the error taxonomy shared by the CLI and the upload server.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel causes wrapped by AppError values.
var (
	ErrEmptyInput       = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON      = errors.New("invalid JSON format")
	ErrMultipleJSON     = errors.New("more than one JSON value at the root")
	ErrFileNotFound     = errors.New("file not found")
	ErrFileEmpty        = errors.New("file is empty")
	ErrNoInput          = errors.New("no input provided")
	ErrInvalidFilePath  = errors.New("invalid file path")
	ErrMissingKey       = errors.New("required key not found")
	ErrUnknownConverter = errors.New("unknown converter")
	ErrUnexpectedShape  = errors.New("unexpected JSON shape")
)

// ErrorType classifies an AppError. It drives both the CLI message prefix and the HTTP status.
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeSchema     ErrorType = "schema"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeConversion ErrorType = "conversion"
	ErrorTypeOutput     ErrorType = "output"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// AppError carries a classification, a human message and an optional cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError of the same Type, so errors.Is(err, &AppError{Type: t}) tests the class.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	return ok && other.Type == e.Type
}

func newError(t ErrorType, message string, cause error) *AppError {
	return &AppError{Type: t, Message: message, Err: cause}
}

// NewInputError reports a problem reading the upload, file or stdin.
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewParsingError reports input that is not exactly one JSON value.
func NewParsingError(message string, err error) *AppError {
	return newError(ErrorTypeParsing, message, err)
}

// NewSchemaError reports a structurally required key that is absent.
func NewSchemaError(message string, err error) *AppError {
	return newError(ErrorTypeSchema, message, err)
}

// NewConfigError reports an invalid converter selection or setting.
func NewConfigError(message string, err error) *AppError {
	return newError(ErrorTypeConfig, message, err)
}

// NewConversionError reports a document shape a converter cannot flatten.
func NewConversionError(message string, err error) *AppError {
	return newError(ErrorTypeConversion, message, err)
}

// NewOutputError reports a failure writing the spreadsheet.
func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// TypeOf returns the ErrorType of the first AppError in err's chain.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries an AppError of type t.
func IsType(err error, t ErrorType) bool {
	return errors.Is(err, &AppError{Type: t})
}

// HTTPStatus maps an error onto the status code returned to upload clients.
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeInput, ErrorTypeParsing, ErrorTypeConfig:
		return http.StatusBadRequest
	case ErrorTypeSchema, ErrorTypeConversion:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

var typePrefixes = map[ErrorType]string{
	ErrorTypeInput:      "Input error",
	ErrorTypeParsing:    "JSON parsing error",
	ErrorTypeSchema:     "Schema error",
	ErrorTypeConfig:     "Configuration error",
	ErrorTypeConversion: "Conversion error",
	ErrorTypeOutput:     "Output error",
}

// Hints for bare sentinels that reach the user without an AppError around them.
var sentinelHints = []struct {
	err  error
	hint string
}{
	{ErrEmptyInput, "The input is empty. Provide a JSON document."},
	{ErrInvalidJSON, "The input is not valid JSON."},
	{ErrMultipleJSON, "The input holds more than one JSON value. Wrap them in an array."},
	{ErrFileNotFound, "The input file does not exist."},
	{ErrFileEmpty, "The input file is empty."},
	{ErrNoInput, "No input provided. Pass a file with -i or pipe JSON to stdin."},
	{ErrInvalidFilePath, "The file path is not valid."},
	{ErrUnknownConverter, "Unknown converter. Run 'jsonsheet converters' to list them."},
}

// UserFriendlyError renders err as a single line for the terminal or a plain-text response.
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		prefix, ok := typePrefixes[appErr.Type]
		if !ok {
			prefix = "Error"
		}
		return prefix + ": " + appErr.Message
	}

	for _, s := range sentinelHints {
		if errors.Is(err, s.err) {
			return "Error: " + s.hint
		}
	}
	return fmt.Sprintf("Error: %v", err)
}
