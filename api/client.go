// ABOUTME: REST client for the dashboard backend's /api/run endpoints with bearer auth.
// ABOUTME: A missing credential short-circuits client-side before any network call is made.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/signalflux/fluxwatch/model"
)

// ErrNoToken is returned when an authenticated request is attempted without a
// bearer credential. The request never reaches the network.
var ErrNoToken = errors.New("api: no bearer token configured")

// StatusError is a non-2xx response, carrying the server-provided detail
// message. Request errors are surfaced once to the user and never retried
// automatically.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: server returned %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("api: server returned %d", e.Code)
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Callers wanting a
// request timeout inject a client that carries one; the default client has
// none, so a hung request has no client-side failure path beyond user retry.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client calls the dashboard backend's REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL and bearer token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunRequest is the payload for starting a new analysis run.
type RunRequest struct {
	Query       string   `json:"query,omitempty"`
	Sources     []string `json:"sources"`
	Wide        int      `json:"wide"`
	Depth       string   `json:"depth"`
	Concurrency int      `json:"concurrency"`
}

// DefaultRunRequest returns the reference defaults for a run request.
func DefaultRunRequest() RunRequest {
	return RunRequest{
		Sources:     []string{"financial"},
		Wide:        10,
		Depth:       "auto",
		Concurrency: 1,
	}
}

// RunStarted is the response to a start, rerun, or update request.
type RunStarted struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
	Query  string `json:"query,omitempty"`
}

// RunData is the structured result payload of one run.
type RunData struct {
	Run     model.Run                    `json:"run"`
	Signals []model.Signal               `json:"signals"`
	Charts  map[string]model.ChartSeries `json:"charts"`
	Graph   model.Graph                  `json:"graph"`
	Report  string                       `json:"report,omitempty"`
}

// StartRun starts a new analysis run.
func (c *Client) StartRun(ctx context.Context, req RunRequest) (*RunStarted, error) {
	var out RunStarted
	if err := c.do(ctx, http.MethodPost, "/api/run", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelRun asks the server to cancel the in-flight run. Cancellation is
// advisory: displayed state only changes once the server confirms via the
// realtime channel.
func (c *Client) CancelRun(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/run/cancel", nil, nil)
}

// Rerun starts a fresh run with the same parameters as a previous one.
func (c *Client) Rerun(ctx context.Context, runID string) (*RunStarted, error) {
	var out RunStarted
	path := fmt.Sprintf("/api/run/%s/rerun", url.PathEscape(runID))
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRun starts an update run on top of an earlier one; the new run will
// declare the old run as its parent.
func (c *Client) UpdateRun(ctx context.Context, runID, query string) (*RunStarted, error) {
	var out RunStarted
	path := fmt.Sprintf("/api/run/%s/update", url.PathEscape(runID))
	body := map[string]string{"query": query}
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRun permanently removes a run record. The confirm parameter is always
// sent; the server rejects unconfirmed deletes.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	path := fmt.Sprintf("/api/run/%s?confirm=true", url.PathEscape(runID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// RunData fetches the structured result payload of a run.
func (c *Client) RunData(ctx context.Context, runID string) (*RunData, error) {
	var out RunData
	path := fmt.Sprintf("/api/run/%s/data", url.PathEscape(runID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Run.RunID == "" {
		out.Run.RunID = runID
	}
	return &out, nil
}

// ExportReport fetches the rendered report document. With view set, the
// server returns an inline-viewable variant instead of an attachment.
func (c *Client) ExportReport(ctx context.Context, runID string, view bool) ([]byte, error) {
	path := fmt.Sprintf("/api/run/%s/export", url.PathEscape(runID))
	if view {
		path += "?view=true"
	}
	var buf bytes.Buffer
	if err := c.doRaw(ctx, http.MethodGet, path, nil, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// do performs an authenticated JSON request, decoding the response into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if err := c.doRaw(ctx, method, path, body, &buf); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
	}
	return nil
}

// doRaw performs the request and copies the raw response body into sink.
func (c *Client) doRaw(ctx context.Context, method, path string, body any, sink *bytes.Buffer) error {
	if c.token == "" {
		return ErrNoToken
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Detail: parseDetail(data)}
	}

	_, _ = sink.Write(data)
	return nil
}

// parseDetail extracts the server's detail message from an error body,
// falling back to the raw body text.
func parseDetail(body []byte) string {
	var shaped struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &shaped); err == nil {
		switch {
		case shaped.Detail != "":
			return shaped.Detail
		case shaped.Error != "":
			return shaped.Error
		case shaped.Message != "":
			return shaped.Message
		}
	}
	return strings.TrimSpace(string(body))
}
