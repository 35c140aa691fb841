package client

import (
	"encoding/json"
	"fmt"
)

// NetworkError indicates the request never produced an HTTP response:
// the connection failed, the context deadline passed, or the body could
// not be read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServiceError indicates the service answered with a non-success status.
type ServiceError struct {
	Op         string
	StatusCode int

	// Detail is the server-provided reason, when the body carried one.
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: service returned %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: service returned %d", e.Op, e.StatusCode)
}

// InvalidResponseError indicates a success response whose body is not
// valid JSON or does not match the expected schema.
type InvalidResponseError struct {
	Op      string
	Content json.RawMessage
	Err     error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }
