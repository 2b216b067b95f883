package errs

import "fmt"

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

// MalformedDatasetError reports a root document that does not have the
// expected shape. It is fatal to the transform step.
type MalformedDatasetError struct {
	ErrorMessage
	Path string
}

type ValidationError struct {
	ErrorMessage
}

type NotFoundError struct {
	ErrorMessage
}

func NewMalformedDatasetError(path, reason string) *MalformedDatasetError {
	return &MalformedDatasetError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("malformed dataset at %q: %s", path, reason)},
		Path:         path,
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}
