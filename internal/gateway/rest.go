package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client is the shared HTTP client for all REST resources of one backend.
// Authentication-token attachment is not handled here; install a request
// decorator (or a custom http.Client transport) for that.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	decorate   func(*http.Request)
	log        *slog.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-call deadline applied to every request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRequestDecorator installs a hook run on every outgoing request,
// typically to attach authorization headers.
func WithRequestDecorator(fn func(*http.Request)) ClientOption {
	return func(c *Client) { c.decorate = fn }
}

// NewClient creates a REST client rooted at baseURL.
func NewClient(baseURL string, logger *slog.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		log:        logger.With("adapter", "rest"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one JSON request. Transport-level failures (including the
// per-call timeout) come back wrapped in ErrNetwork; 4xx/5xx responses come
// back as *StatusError carrying any server-supplied message.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.decorate != nil {
		c.decorate(req)
	}

	c.log.DebugContext(ctx, "request", slog.String("method", method), slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "request failed",
			slog.String("method", method), slog.String("path", path), slog.String("error", err.Error()))
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w: %v", method, path, ErrNetwork, err)
	}

	if resp.StatusCode >= 400 {
		se := &StatusError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &msg) == nil {
			se.Message = msg.Message
		}
		c.log.ErrorContext(ctx, "request rejected",
			slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode))
		return se
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// pageEnvelope is the wire shape of a paginated list response.
type pageEnvelope[T any] struct {
	Records    []T `json:"records"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Resource is the REST gateway for one resource collection rooted at path
// (for example "/activities"). It implements Gateway[T, C, P].
type Resource[T, C, P any] struct {
	client *Client
	path   string
}

// NewResource creates a REST resource gateway on the shared client.
func NewResource[T, C, P any](client *Client, path string) *Resource[T, C, P] {
	return &Resource[T, C, P]{client: client, path: path}
}

// List fetches one page of records matching the query.
func (r *Resource[T, C, P]) List(ctx context.Context, q Query) (Page[T], error) {
	var env pageEnvelope[T]
	if err := r.client.do(ctx, http.MethodGet, r.path, encodeQuery(q), nil, &env); err != nil {
		return Page[T]{}, err
	}
	return Page[T]{
		Records:    env.Records,
		Total:      env.Total,
		Page:       env.Page,
		Limit:      env.Limit,
		TotalPages: env.TotalPages,
	}, nil
}

// GetByID fetches a single record.
func (r *Resource[T, C, P]) GetByID(ctx context.Context, id string) (T, error) {
	var rec T
	err := r.client.do(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id), nil, nil, &rec)
	return rec, err
}

// Create posts a new record; the backend assigns the identifier.
func (r *Resource[T, C, P]) Create(ctx context.Context, payload C) (T, error) {
	var rec T
	err := r.client.do(ctx, http.MethodPost, r.path, nil, payload, &rec)
	return rec, err
}

// Update replaces fields of an existing record and returns the canonical
// server copy.
func (r *Resource[T, C, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var rec T
	err := r.client.do(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id), nil, patch, &rec)
	return rec, err
}

// PatchStatus updates only the status field.
func (r *Resource[T, C, P]) PatchStatus(ctx context.Context, id, status string) (T, error) {
	var rec T
	body := map[string]string{"status": status}
	err := r.client.do(ctx, http.MethodPatch, r.path+"/"+url.PathEscape(id)+"/status", nil, body, &rec)
	return rec, err
}

// Delete removes a record.
func (r *Resource[T, C, P]) Delete(ctx context.Context, id string) error {
	return r.client.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil, nil)
}

// CompletableResource extends Resource with the completion and bulk-status
// operations the activities endpoint exposes.
type CompletableResource[T, C, P any] struct {
	*Resource[T, C, P]
}

// NewCompletableResource creates a REST resource gateway that also
// implements Completer and BulkPatcher.
func NewCompletableResource[T, C, P any](client *Client, path string) *CompletableResource[T, C, P] {
	return &CompletableResource[T, C, P]{Resource: NewResource[T, C, P](client, path)}
}

// MarkCompleted records a completion; the zero time lets the server stamp
// the current moment.
func (r *CompletableResource[T, C, P]) MarkCompleted(ctx context.Context, id string, when time.Time) (T, error) {
	var rec T
	body := map[string]string{}
	if !when.IsZero() {
		body["lastCompleted"] = when.UTC().Format(time.RFC3339)
	}
	err := r.client.do(ctx, http.MethodPatch, r.path+"/"+url.PathEscape(id)+"/complete", nil, body, &rec)
	return rec, err
}

// BulkPatchStatus updates the status of every listed record in one call and
// returns the server copies of the records it touched.
func (r *CompletableResource[T, C, P]) BulkPatchStatus(ctx context.Context, ids []string, status string) ([]T, error) {
	body := map[string]any{"ids": ids, "status": status}
	var result struct {
		Updated int `json:"updated"`
		Records []T `json:"records"`
	}
	err := r.client.do(ctx, http.MethodPatch, r.path+"/bulk/status", nil, body, &result)
	return result.Records, err
}

func encodeQuery(q Query) url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	for key, value := range q.Filters.Fields {
		values.Set(string(key), value)
	}
	if q.Filters.Start != nil {
		values.Set("startDate", q.Filters.Start.UTC().Format(time.RFC3339))
	}
	if q.Filters.End != nil {
		values.Set("endDate", q.Filters.End.UTC().Format(time.RFC3339))
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}
