package api

import "fmt"

// unknownErrorMessage stands in when an error body has no message field.
const unknownErrorMessage = "Unknown error"

// HTTPError is a non-2xx response to a create request.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Message)
}

// InvalidResponseError is a successful create response without a request_id.
type InvalidResponseError struct {
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return "Invalid response: " + e.Reason
}

// PollError is a non-2xx response to a poll request.
type PollError struct {
	StatusCode int
}

func (e *PollError) Error() string {
	return fmt.Sprintf("Polling error: %d", e.StatusCode)
}
