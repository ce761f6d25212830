package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// Notifier receives user-facing success and error messages from the pipeline.
// Notifications are side effects only; they never change what Request returns.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// logNotifier is the default Notifier. It writes messages to the process log.
type logNotifier struct{}

func (logNotifier) Success(msg string) { log.Printf("OK: %s", msg) }
func (logNotifier) Error(msg string)   { log.Printf("ERROR: %s", msg) }

// APIError is a non-2xx response normalized to a single message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// RequestOptions carries per-call overrides for Request.
type RequestOptions struct {
	// Headers are applied verbatim. A caller-supplied Authorization header
	// suppresses the session credential for this call.
	Headers map[string]string
	// SuccessMessage, when set, is surfaced via the Notifier on 2xx.
	SuccessMessage string
	// ErrorMessage, when set, replaces the server's message in the
	// notification (the returned error still carries the server's message).
	ErrorMessage string
}

// Client is the request pipeline every API call goes through.
// Each call makes exactly one attempt: no retries, no pipeline timeout.
// Callers bound calls with the context.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    SessionControl
	Notifier   Notifier
}

// NewClient builds a pipeline over baseURL using the given session.
func NewClient(baseURL string, session SessionControl) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		Session:    session,
		Notifier:   logNotifier{},
	}
}

// joinURL joins base and path with exactly one separator between them.
func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Request performs one HTTP call and normalizes the outcome.
//
// A 401 tears the session down and returns (nil, nil): the call is over and
// there is no data, but it is not an error the caller should branch on.
// Other non-2xx statuses return an *APIError carrying the server's "message"
// or "error" field, falling back to "An error occurred". An empty 2xx body
// comes back as "{}" so callers can always unmarshal.
func (c *Client) Request(ctx context.Context, method, path string, body any, opts *RequestOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, joinURL(c.BaseURL, path), reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	callerAuth := false
	for k, v := range opts.Headers {
		if strings.EqualFold(k, "Authorization") {
			callerAuth = true
		}
		req.Header.Set(k, v)
	}
	if !callerAuth {
		if credential := c.Session.Credential(); credential != "" {
			req.Header.Set("Authorization", "Bearer "+credential)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		err = fmt.Errorf("request failed: %w", err)
		c.notifyError(opts, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read response body: %w", err)
		c.notifyError(opts, err.Error())
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.Session.Teardown()
		return nil, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		c.notifyError(opts, apiErr.Message)
		return nil, apiErr
	}

	if opts.SuccessMessage != "" {
		c.Notifier.Success(opts.SuccessMessage)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(data), nil
}

func (c *Client) notifyError(opts *RequestOptions, msg string) {
	if opts.ErrorMessage != "" {
		msg = opts.ErrorMessage
	}
	c.Notifier.Error(msg)
}

// errorMessage extracts the server's failure message from a response body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return "An error occurred"
}
