package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to one summarization endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create registers a job for arxivURL and returns its request id.
func (c *Client) Create(ctx context.Context, arxivURL string) (string, error) {
	resp, err := c.post(ctx, CreateRequest{ArxivURL: arxivURL})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	var out CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &InvalidResponseError{Reason: fmt.Sprintf("could not decode body: %v", err)}
	}
	if out.RequestID == "" {
		return "", &InvalidResponseError{Reason: "No request_id received."}
	}
	return out.RequestID, nil
}

// Poll fetches the current state of a job.
func (c *Client) Poll(ctx context.Context, requestID string) (*PollResponse, error) {
	resp, err := c.post(ctx, PollRequest{RequestID: requestID})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &PollError{StatusCode: resp.StatusCode}
	}

	var out PollResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid poll response: %w", err)
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, body any) (*http.Response, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAPIKey, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// errorMessage extracts {"message": ...} from an error body.
func errorMessage(r io.Reader) string {
	var body ErrorResponse
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil || body.Message == "" {
		return unknownErrorMessage
	}
	return body.Message
}
