package donetick

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClientError reports an HTTP 4xx response other than 429. It is
// fatal: the request is never retried and the error is surfaced to the
// caller immediately, carrying the status and response body.
type ClientError struct {
	// StatusCode is the HTTP status returned by the API
	StatusCode int

	// Body is the raw response body, useful for diagnosing validation errors
	Body string

	// Detail holds the decoded error body when the API returned its
	// structured error shape
	Detail *APIError
}

// newClientError builds a ClientError, decoding the structured error
// body when the API provides one.
func newClientError(statusCode int, body []byte) *ClientError {
	clientErr := &ClientError{StatusCode: statusCode, Body: string(body)}

	var detail APIError
	if err := json.Unmarshal(body, &detail); err == nil && detail.Error != "" {
		clientErr.Detail = &detail
	}
	return clientErr
}

// Error implements the error interface
func (e *ClientError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("donetick: client error %d: %s", e.StatusCode, e.Detail.Error)
	}
	return fmt.Sprintf("donetick: client error %d: %s", e.StatusCode, e.Body)
}

// ServerError reports an HTTP 5xx response. Server errors are retried
// with exponential backoff and only surfaced once retries are
// exhausted, wrapped in a RetriesExhaustedError.
type ServerError struct {
	// StatusCode is the HTTP status returned by the API
	StatusCode int

	// Body is the raw response body
	Body string
}

// Error implements the error interface
func (e *ServerError) Error() string {
	return fmt.Sprintf("donetick: server error %d: %s", e.StatusCode, e.Body)
}

// TimeoutError reports a transport-level timeout. Timeouts receive the
// same retry treatment as server errors.
type TimeoutError struct {
	// Err is the underlying transport error
	Err error
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("donetick: request timed out: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// RateLimitedError reports an HTTP 429 from the server. The executor
// honours the server-specified delay and retries; the error only
// becomes terminal when retries are exhausted while still receiving
// 429, in which case it is wrapped in a RetriesExhaustedError.
type RateLimitedError struct {
	// RetryAfter is the delay requested by the server
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("donetick: rate limited by server, retry after %s", e.RetryAfter)
}

// RetriesExhaustedError is the terminal failure returned when a
// logical request used up its retry budget without succeeding and
// without hitting a fatal client error.
type RetriesExhaustedError struct {
	// Attempts is the number of transport calls that were made
	Attempts int

	// Cause is the classified failure of the final attempt
	Cause error
}

// Error implements the error interface
func (e *RetriesExhaustedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("donetick: request failed after %d attempts: %v", e.Attempts, e.Cause)
	}
	return fmt.Sprintf("donetick: request failed after %d attempts", e.Attempts)
}

// Unwrap implements the errors.Unwrap interface, so callers can reach
// the final attempt's classification with errors.As.
func (e *RetriesExhaustedError) Unwrap() error {
	return e.Cause
}
