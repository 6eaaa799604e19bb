package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeDataIntegrity indicates a referential integrity violation in
	// the source data (a transaction or interaction pointing at a customer
	// that does not exist)
	ErrorTypeDataIntegrity ErrorType = "DATA_INTEGRITY"

	// ErrorTypeDegenerateCluster indicates a cluster ended up empty after
	// convergence
	ErrorTypeDegenerateCluster ErrorType = "DEGENERATE_CLUSTER"

	// ErrorTypeInsufficientClusters indicates labeling was attempted with
	// fewer than two clusters
	ErrorTypeInsufficientClusters ErrorType = "INSUFFICIENT_CLUSTERS"

	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from an external service
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewDataIntegrityError creates a new data integrity error
func NewDataIntegrityError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeDataIntegrity,
		Message: message,
	}
}

// NewDegenerateClusterError creates a new degenerate cluster error
func NewDegenerateClusterError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeDegenerateCluster,
		Message: message,
	}
}

// NewInsufficientClustersError creates a new insufficient clusters error
func NewInsufficientClustersError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInsufficientClusters,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}
