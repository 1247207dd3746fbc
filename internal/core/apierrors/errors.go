// Package apierrors holds the validation error reporting types returned to API clients.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

// Code identifies a kind of validation error.
type Code string

const (
	// CodeInvalidJSON indicates the body is not well-formed JSON.
	CodeInvalidJSON Code = "json.invalid"
	// CodeTooLarge indicates the body exceeds the allowed size.
	CodeTooLarge Code = "json.too_large"
	// CodeMissingProperty indicates a required property is absent.
	CodeMissingProperty Code = "json.missing_property"
	// CodeWrongType indicates a property has an unexpected JSON type.
	CodeWrongType Code = "json.wrong_type"
	// CodeSecretDetected indicates a credential or personal data was found.
	CodeSecretDetected Code = "json.secret_detected"
	// CodeUnknownProfile indicates no validation profile applies to the request.
	CodeUnknownProfile Code = "request.unknown_profile"
	// CodeInvalidGroup indicates a malformed validation group name.
	CodeInvalidGroup Code = "request.invalid_group"
)

// LocationType describes what Location points into.
type LocationType string

const (
	LocationJSON   LocationType = "json"
	LocationHeader LocationType = "header"
	LocationQuery  LocationType = "query"
)

// Error is a single validation error.
type Error struct {
	Code         Code         `json:"code"`
	Message      string       `json:"message"`
	Location     string       `json:"location,omitempty"`
	LocationType LocationType `json:"locationType,omitempty"`
}

// New creates an error for a JSON location
func New(code Code, location, format string, args ...any) Error {
	return NewAt(LocationJSON, code, location, format, args...)
}

// NewAt creates an error for a location of the given type, e.g. a header name.
// The type is dropped when location is empty.
func NewAt(typ LocationType, code Code, location, format string, args ...any) Error {
	e := Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
	if location != "" {
		e.Location = location
		e.LocationType = typ
	}
	return e
}

func (e Error) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Location, e.Message)
}

// Errors is a list of validation errors.
type Errors []Error

func (es Errors) Error() string {
	if len(es) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends e
func (es *Errors) Add(e Error) {
	*es = append(*es, e)
}

// Has reports whether an error with code is present
func (es Errors) Has(code Code) bool {
	for _, e := range es {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Codes returns the distinct codes in order of first appearance
func (es Errors) Codes() []Code {
	var codes []Code
	seen := make(map[Code]bool)
	for _, e := range es {
		if !seen[e.Code] {
			codes = append(codes, e.Code)
			seen[e.Code] = true
		}
	}
	return codes
}

func (es Errors) Empty() bool {
	return len(es) == 0
}

// Exception is raised by callers when preprocessing or validation rejects a request.
type Exception struct {
	Status int
	Errors Errors
}

// NewException creates an exception with status 422 Unprocessable Entity.
func NewException(errs Errors) *Exception {
	return &Exception{Status: http.StatusUnprocessableEntity, Errors: errs}
}

// WithStatus sets the HTTP status and returns the exception
func (e *Exception) WithStatus(status int) *Exception {
	e.Status = status
	return e
}

func (e *Exception) Error() string {
	return e.Errors.Error()
}

// Unwrap exposes the error list to errors.As
func (e *Exception) Unwrap() error {
	return e.Errors
}

// AsException extracts an Exception from err.
func AsException(err error) (*Exception, bool) {
	var ex *Exception
	if errors.As(err, &ex) {
		return ex, true
	}
	return nil, false
}

// IsException reports whether err carries an Exception.
func IsException(err error) bool {
	_, ok := AsException(err)
	return ok
}

type body struct {
	Errors Errors `json:"errors"`
}

// Marshal encodes errs as {"errors":[...]}
func Marshal(errs Errors) ([]byte, error) {
	if errs == nil {
		errs = Errors{}
	}
	data, err := sonic.Marshal(body{Errors: errs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal errors: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a body produced by Marshal
func Unmarshal(data []byte) (Errors, error) {
	var b body
	if err := sonic.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal errors: %w", err)
	}
	return b.Errors, nil
}
