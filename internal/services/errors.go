package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// CodeInternal is the reason code reported when a failure carries no
// explicit code of its own.
const CodeInternal = "internal"

// CodedError pairs a stable machine-checkable reason code with a
// human-readable message. Fatal pipeline errors are declared as package
// sentinels of this type so callers can match them with errors.Is.
type CodedError struct {
	code    string
	message string
}

// NewCoded constructs a coded sentinel error.
func NewCoded(code, message string) *CodedError {
	return &CodedError{code: code, message: message}
}

func (e *CodedError) Error() string { return e.message }

// Code returns the machine-checkable reason code.
func (e *CodedError) Code() string { return e.code }

// Code extracts the reason code from an error chain. Errors without a
// CodedError in the chain report CodeInternal.
func Code(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code()
	}
	if errors.Is(err, ErrTimeout) {
		return "timeout"
	}
	if errors.Is(err, ErrValidation) {
		return "validation"
	}
	if errors.Is(err, ErrConfiguration) {
		return "configuration"
	}
	return CodeInternal
}

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above or a CodedError.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Details describes the user-facing portion of a stage error.
type Details struct {
	Message string
	Code    string
}

// ErrorDetails extracts a display message and reason code from an error.
func ErrorDetails(err error) Details {
	if err == nil {
		return Details{}
	}
	message := strings.TrimSpace(err.Error())
	for _, marker := range []error{ErrExternalTool, ErrValidation, ErrConfiguration, ErrNotFound, ErrTimeout, ErrTransient} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(message, prefix) {
			message = strings.TrimPrefix(message, prefix)
			break
		}
	}
	return Details{Message: message, Code: Code(err)}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
