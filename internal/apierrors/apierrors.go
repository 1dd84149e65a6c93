// Package apierrors contains the error types returned by the service layer and
// translated into HTTP responses by the handlers.
package apierrors

import "net/http"

// APIError represents an error that already knows which HTTP status code it
// should be reported with.
type APIError struct {
	Detail     string `json:"detail"`
	statusCode int
}

// Option determines the Functional Options used to create a new APIError.
type Option func(apiError *APIError)

// WithDetail sets the error detail.
func WithDetail(err error) Option {
	return func(apiError *APIError) {
		apiError.Detail = err.Error()
	}
}

// WithHTTPStatusCode sets the HTTP status code that should be sent to the client.
func WithHTTPStatusCode(statusCode int) Option {
	return func(apiError *APIError) {
		apiError.statusCode = statusCode
	}
}

// NewAPIError creates a new APIError using the given options.
func NewAPIError(opts ...Option) *APIError {
	apiError := &APIError{statusCode: http.StatusInternalServerError}
	for _, opt := range opts {
		opt(apiError)
	}
	return apiError
}

// HTTPStatusCode gets the HTTP status code associated to the error.
func (a APIError) HTTPStatusCode() int {
	return a.statusCode
}

func (a APIError) Error() string {
	return a.Detail
}

// ValidationError represents a recoverable user input error, always reported
// with the field it refers to and the reason it was rejected.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (v ValidationError) Error() string {
	return v.Field + ": " + v.Reason
}

// NotFoundError represents a reference to a resource that doesn't exist or
// isn't visible to the acting user.
type NotFoundError struct {
	Resource string `json:"resource"`
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func (n NotFoundError) Error() string {
	return n.Resource + " not found"
}
