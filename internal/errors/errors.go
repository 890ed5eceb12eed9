package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error.
type ErrorType string

const (
	ErrorTypeCursorExhausted     ErrorType = "CURSOR_EXHAUSTED"
	ErrorTypeUnresolvedReference ErrorType = "UNRESOLVED_REFERENCE"
	ErrorTypeEncodingOverflow    ErrorType = "ENCODING_OVERFLOW"
	ErrorTypeInvalidSyntax       ErrorType = "INVALID_SYNTAX"
	ErrorTypeMissingModel        ErrorType = "MISSING_MODEL"
	ErrorTypeStorage             ErrorType = "STORAGE_ERROR"
	ErrorTypeValidation          ErrorType = "VALIDATION_ERROR"
	ErrorTypeInternal            ErrorType = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. Matching is by Type only.
var (
	ErrCursorExhausted     = New(ErrorTypeCursorExhausted, "cursor exhausted")
	ErrUnresolvedReference = New(ErrorTypeUnresolvedReference, "unresolved reference")
	ErrEncodingOverflow    = New(ErrorTypeEncodingOverflow, "encoding overflow")
	ErrInvalidSyntax       = New(ErrorTypeInvalidSyntax, "invalid syntax")
	ErrMissingModel        = New(ErrorTypeMissingModel, "missing model")
	ErrStorage             = New(ErrorTypeStorage, "storage error")
)

// AppError represents an application error with additional context.
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{}, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithCode adds an error code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// New creates a new AppError.
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
	}
}

// Wrap wraps an existing error.
func Wrap(err error, errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors.

// NewCursorExhausted reports a read that needed more data than the cursor holds.
func NewCursorExhausted(wanted string, remaining int) *AppError {
	return New(ErrorTypeCursorExhausted, fmt.Sprintf("cannot read %s, %d bits remaining", wanted, remaining)).
		WithDetails(map[string]interface{}{"wanted": wanted, "remaining_bits": remaining})
}

// NewUnresolvedReference reports a parameter set ID with no emitted definition.
func NewUnresolvedReference(kind string, id uint32) *AppError {
	return New(ErrorTypeUnresolvedReference, fmt.Sprintf("no %s with id %d has been emitted", kind, id)).
		WithDetails(map[string]interface{}{"parameter_set": kind, "id": id})
}

// NewEncodingOverflow reports a value that does not fit its fixed-width field.
func NewEncodingOverflow(field string, value uint64, width int) *AppError {
	return New(ErrorTypeEncodingOverflow, fmt.Sprintf("%s value %d does not fit in %d bits", field, value, width)).
		WithDetails(map[string]interface{}{"field": field, "value": value, "width": width})
}

// NewInvalidSyntax reports a malformed bitstream or model.
func NewInvalidSyntax(message string) *AppError {
	return New(ErrorTypeInvalidSyntax, message)
}

// NewMissingModel reports a NALU whose per-type model entry does not exist.
func NewMissingModel(kind string, index int) *AppError {
	return New(ErrorTypeMissingModel, fmt.Sprintf("no %s model at index %d", kind, index)).
		WithDetails(map[string]interface{}{"kind": kind, "index": index})
}

// WrapStorageError wraps a replay buffer persistence failure.
func WrapStorageError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeStorage, message)
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

// WrapInternalError wraps an error as an internal error.
func WrapInternalError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeInternal, message)
}

// AtNALU annotates err with the NALU index it occurred at. AppErrors keep
// their type; other errors are wrapped as internal errors.
func AtNALU(err error, index int) error {
	appErr, ok := GetAppError(err)
	if !ok {
		appErr = WrapInternalError(err, "unexpected failure")
	}
	annotated := *appErr
	annotated.Message = fmt.Sprintf("nalu %d: %s", index, appErr.Message)
	annotated.Details = nil
	annotated.WithDetails(appErr.Details)
	annotated.WithDetails(map[string]interface{}{"nalu_index": index})
	return &annotated
}

// GetAppError extracts AppError from an error chain.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.Type == errType
}
