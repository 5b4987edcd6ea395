// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package queue is a client for a queue-based text-generation API. A
// request is submitted, its status is polled until it reaches a terminal
// state, and the result is fetched once the request has completed.
package queue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"go.uber.org/zap"

	"github.com/pdiddy/corpus-engine/internal/httputil"
)

// DefaultBaseURL is the submission endpoint of the generation queue.
const DefaultBaseURL = "https://queue.fal.run/openrouter/router"

// DefaultResultPath locates the generated text in a result payload.
const DefaultResultPath = "$.output"

// PollInterval is the default delay between status checks. Tests override
// this to avoid real sleeps.
var PollInterval = 2 * time.Second

// ErrRequestFailed is returned when the queue reports FAILED or CANCELLED.
var ErrRequestFailed = errors.New("generation request failed")

// State is the lifecycle state of a queued request.
type State string

const (
	StateInQueue    State = "IN_QUEUE"
	StateInProgress State = "IN_PROGRESS"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
	StateCancelled  State = "CANCELLED"
)

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Request is the submission body.
type Request struct {
	Model        string  `json:"model"`
	SystemPrompt string  `json:"system_prompt"`
	Prompt       string  `json:"prompt"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
}

// StatusResponse is the body returned by the status endpoint.
type StatusResponse struct {
	Status        State  `json:"status"`
	QueuePosition *int   `json:"queue_position,omitempty"`
	ResponseURL   string `json:"response_url,omitempty"`
}

type submitResponse struct {
	RequestID string `json:"request_id"`
}

// Client talks to the generation queue. The zero value is not usable;
// APIKey must be set. BaseURL, ResultPath, and Interval fall back to
// their defaults when empty.
type Client struct {
	BaseURL    string
	APIKey     string
	ResultPath string
	Interval   time.Duration
	HTTP       *http.Client
	UserAgent  string
	Logger     *zap.Logger

	// Observe, when set, is called on every status transition.
	Observe func(requestID string, state State)
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c *Client) resultPath() string {
	if c.ResultPath == "" {
		return DefaultResultPath
	}
	return c.ResultPath
}

func (c *Client) interval() time.Duration {
	if c.Interval <= 0 {
		return PollInterval
	}
	return c.Interval
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Key "+c.APIKey)
	if c.UserAgent != "" {
		h.Set("User-Agent", c.UserAgent)
	}
	return h
}

// StatusURL returns the status endpoint for a request.
func (c *Client) StatusURL(requestID string) string {
	return c.baseURL() + "/requests/" + requestID + "/status"
}

// ResultURL returns the result endpoint for a request.
func (c *Client) ResultURL(requestID string) string {
	return c.baseURL() + "/requests/" + requestID
}

// Submit enqueues req and returns the request ID.
func (c *Client) Submit(ctx context.Context, req Request) (string, error) {
	var resp submitResponse
	if err := httputil.DoJSON(ctx, c.HTTP, http.MethodPost, c.baseURL(), c.header(), req, &resp); err != nil {
		return "", fmt.Errorf("submitting request: %w", err)
	}
	if resp.RequestID == "" {
		return "", fmt.Errorf("submitting request: response has no request_id")
	}
	return resp.RequestID, nil
}

// Status fetches the current state of a request.
func (c *Client) Status(ctx context.Context, requestID string) (StatusResponse, error) {
	var resp StatusResponse
	if err := httputil.DoJSON(ctx, c.HTTP, http.MethodGet, c.StatusURL(requestID), c.header(), nil, &resp); err != nil {
		return StatusResponse{}, fmt.Errorf("checking status of %s: %w", requestID, err)
	}
	return resp, nil
}

// Wait polls the status endpoint until the request reaches a terminal
// state. FAILED and CANCELLED are reported as ErrRequestFailed.
func (c *Client) Wait(ctx context.Context, requestID string) error {
	var last State
	for {
		st, err := c.Status(ctx, requestID)
		if err != nil {
			return err
		}
		if st.Status != last {
			c.logger().Debug("request state changed",
				zap.String("request_id", requestID),
				zap.String("state", string(st.Status)))
			if c.Observe != nil {
				c.Observe(requestID, st.Status)
			}
			last = st.Status
		}

		switch st.Status {
		case StateCompleted:
			return nil
		case StateFailed, StateCancelled:
			return fmt.Errorf("request %s %s: %w", requestID, st.Status, ErrRequestFailed)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.interval()):
		}
	}
}

// Result fetches the output of a completed request. A non-empty "error"
// field in the payload is returned as an error. The text found at the
// client's result path is returned with surrounding whitespace trimmed.
func (c *Client) Result(ctx context.Context, requestID string) (string, error) {
	var doc any
	if err := httputil.DoJSON(ctx, c.HTTP, http.MethodGet, c.ResultURL(requestID), c.header(), nil, &doc); err != nil {
		return "", fmt.Errorf("fetching result of %s: %w", requestID, err)
	}

	if obj, ok := doc.(map[string]any); ok {
		if e, ok := obj["error"]; ok && truthy(e) {
			return "", fmt.Errorf("request %s: %v", requestID, e)
		}
	}

	val, err := jsonpath.Get(c.resultPath(), doc)
	if err != nil {
		return "", fmt.Errorf("request %s: result path %s: %w", requestID, c.resultPath(), err)
	}
	// Index expressions may yield a one-element slice.
	if arr, ok := val.([]any); ok && len(arr) == 1 {
		val = arr[0]
	}
	text, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("request %s: result path %s is %T, not a string", requestID, c.resultPath(), val)
	}
	return strings.TrimSpace(text), nil
}

// Generate submits req, waits for completion, and returns the output.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	id, err := c.Submit(ctx, req)
	if err != nil {
		return "", err
	}
	c.logger().Debug("request submitted", zap.String("request_id", id), zap.String("model", req.Model))

	if err := c.Wait(ctx, id); err != nil {
		return "", err
	}
	return c.Result(ctx, id)
}

// truthy mirrors JSON truthiness for the error field: null, false, "",
// empty arrays, and empty objects do not count as errors.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case float64:
		return t != 0
	}
	return true
}
