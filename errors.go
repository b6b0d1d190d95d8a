package stakeapi

import (
	"fmt"
	"net/http"
	"strings"
)

// APIError is returned for any request that fails at the HTTP layer:
// a non-2xx status outside the dedicated 401/429 kinds, or a transport
// failure (DNS, TCP, timeout) in which case Status is zero and Err
// carries the underlying cause.
type APIError struct {
	Status int
	Body   string
	Err    error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AuthenticationError is returned when the API rejects the credential
// (HTTP 401).
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "invalid access token or unauthorized access"
	}
	return e.Message
}

// RateLimitError is returned on HTTP 429.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limit exceeded"
	}
	return e.Message
}

// ValidationError is returned when a response payload is missing a
// required model field or a field fails type coercion, or when a
// method receives malformed input.
type ValidationError struct {
	Model  string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Model, e.Reason)
	}
	return fmt.Sprintf("%s.%s: %s", e.Model, e.Field, e.Reason)
}

// GraphQLError is returned when a GraphQL response carries a non-empty
// errors list, even if the HTTP status was 200.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "GraphQL errors: " + strings.Join(e.Messages, ", ")
}

// Unwrap surfaces the failure as an APIError too: the HTTP exchange
// succeeded (status 200) but the API rejected the operation, so
// callers matching only *APIError still see it.
func (e *GraphQLError) Unwrap() error {
	return &APIError{Status: http.StatusOK, Body: strings.Join(e.Messages, ", ")}
}
