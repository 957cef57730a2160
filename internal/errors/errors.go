package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

var (
	Is     = errors.Is
	As     = errors.As
	New    = errors.New
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

type ErrorCategory string

const (
	CategoryNetwork    ErrorCategory = "NETWORK"    // Connection issues
	CategoryIO         ErrorCategory = "IO"         // File system issues
	CategoryResource   ErrorCategory = "RESOURCE"   // Resource not found, etc.
	CategorySecurity   ErrorCategory = "SECURITY"   // Auth, permissions, etc.
	CategoryDependency ErrorCategory = "DEPENDENCY" // Optional backend not available
	CategoryUnknown    ErrorCategory = "UNKNOWN"    // Unclassified errors
)

// Scheme identifiers
type Scheme string

const (
	SchemeHTTP    Scheme = "http"
	SchemeHTTPS   Scheme = "https"
	SchemeFile    Scheme = "file"
	SchemeS3      Scheme = "s3"
	SchemeGeneric Scheme = "generic"
)

// TransportError describes why a scheme adapter could not serve a request.
// Adapters store it as the cause of a synthetic 404 response, so the status
// stays uniform while the category tells callers what actually happened.
type TransportError struct {
	Err        error         // Original error
	Category   ErrorCategory // General category
	Scheme     Scheme        // Which adapter generated this error
	Retryable  bool          // Whether retry is recommended
	Timestamp  time.Time     // When the error occurred
	Resource   string        // What resource was being accessed
	StatusCode int           // Status code reported to the caller
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Scheme == SchemeGeneric {
		return fmt.Sprintf("[%s] %s: %v", e.Category, e.Resource, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s (status: %d): %v", e.Scheme, e.Category, e.Resource, e.StatusCode, e.Err)
}

// Unwrap provides the underlying cause for error unwrapping (compatible with errors.As)
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Common sentinel errors
var (
	ErrResourceNotFound  = New("resource not found")
	ErrAccessDenied      = New("access denied")
	ErrIsDirectory       = New("is a directory")
	ErrDependencyMissing = New("required backend is not available")
	ErrTimeout           = New("operation timed out")
)

func newError(err error, category ErrorCategory, scheme Scheme, resource string, status int, retryable bool) *TransportError {
	return &TransportError{
		Err:        err,
		Category:   category,
		Scheme:     scheme,
		Retryable:  retryable,
		Timestamp:  time.Now(),
		Resource:   resource,
		StatusCode: status,
	}
}

// NewNetworkError creates a network-related error
func NewNetworkError(err error, scheme Scheme, resource string, retryable bool) *TransportError {
	return newError(err, CategoryNetwork, scheme, resource, 0, retryable)
}

// NewIOError classifies an OS-level error from stat/open/read. Missing paths
// become RESOURCE errors and permission failures SECURITY errors; anything
// else stays IO.
func NewIOError(err error, scheme Scheme, resource string, status int) *TransportError {
	category := CategoryIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		category = CategoryResource
	case errors.Is(err, fs.ErrPermission):
		category = CategorySecurity
	}

	return newError(err, category, scheme, resource, status, false)
}

// NewResourceError creates an error for a resource that does not exist.
func NewResourceError(err error, scheme Scheme, resource string, status int) *TransportError {
	return newError(err, CategoryResource, scheme, resource, status, false)
}

// NewSecurityError creates an error for a denied access.
func NewSecurityError(err error, scheme Scheme, resource string, status int) *TransportError {
	return newError(err, CategorySecurity, scheme, resource, status, false)
}

// NewDependencyError creates an error for a backend that is not configured.
func NewDependencyError(err error, scheme Scheme, resource string, status int) *TransportError {
	return newError(err, CategoryDependency, scheme, resource, status, false)
}

// IsRetryable determines if an error should be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var transportErr *TransportError
	if As(err, &transportErr) {
		return transportErr.Retryable
	}

	return false
}

// CategoryOf returns the category of err, or CategoryUnknown.
func CategoryOf(err error) ErrorCategory {
	var transportErr *TransportError
	if As(err, &transportErr) {
		return transportErr.Category
	}

	return CategoryUnknown
}

// IsCategory reports whether err carries the given category.
func IsCategory(err error, category ErrorCategory) bool {
	return err != nil && CategoryOf(err) == category
}

// GetStatusCode extracts the status code from an error if available
func GetStatusCode(err error) (int, bool) {
	var transportErr *TransportError
	if As(err, &transportErr) {
		return transportErr.StatusCode, true
	}
	return 0, false
}
