// Package api is the wire protocol of the summarization endpoint. A single URL
// serves two operations, told apart by the shape of the request body:
// {"arxivUrl": ...} creates a job, {"requestId": ...} polls it.
package api

// HeaderAPIKey carries the static API key on every request.
const HeaderAPIKey = "x-api-key"

// StatusPending is the poll status of a job that has not finished.
const StatusPending = "pending"

// CreateRequest registers a summarization job.
type CreateRequest struct {
	ArxivURL string `json:"arxivUrl"`
}

// CreateResponse carries the server-issued job identifier.
type CreateResponse struct {
	RequestID string `json:"request_id"`
}

// PollRequest asks for the state of a job.
type PollRequest struct {
	RequestID string `json:"requestId"`
}

// Request is the union the server decodes before deciding which operation to run.
type Request struct {
	ArxivURL  string `json:"arxivUrl,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// PollResponse is {"status":"pending"} while the job runs and {"html": ...}
// once it is done.
type PollResponse struct {
	Status  string `json:"status,omitempty"`
	HTML    string `json:"html,omitempty"`
	Message string `json:"message,omitempty"`
}

// Pending reports whether the job is still running.
func (p PollResponse) Pending() bool {
	return p.Status == StatusPending
}

// Done reports whether the response carries the rendered summary.
func (p PollResponse) Done() bool {
	return p.HTML != ""
}

// ErrorResponse is the body of a non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}
