package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates a report failed validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageOperation indicates a storage operation failed
	ErrStorageOperation = errors.New("storage operation failed")

	// ErrCapabilityUnavailable indicates an optional capability (NER model,
	// embedding host) is not available
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrPublishFailed indicates the publication sink rejected a digest
	ErrPublishFailed = errors.New("publish failed")
)

// WrapError wraps an error with context message
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCapabilityUnavailable checks if error is a capability unavailable error
func IsCapabilityUnavailable(err error) bool {
	return errors.Is(err, ErrCapabilityUnavailable)
}

// IsPublishFailed checks if error is a publish failure
func IsPublishFailed(err error) bool {
	return errors.Is(err, ErrPublishFailed)
}
