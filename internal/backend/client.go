package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docuflow/records-console/internal"
)

// Client is the typed HTTP client for the document-management REST API. It
// owns no state beyond the connection pool; the bearer token travels in the
// request context so every call is issued on behalf of the signed-in user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := internal.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err)
		return nil, internal.ErrBackendUnavailable.WithCause(err)
	}

	c.logger.Debug("backend request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	return resp, nil
}

// GetJSON issues a GET and decodes the whole response body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return internal.NewInternalError("failed to decode backend response", err)
	}
	return nil
}

// List issues a paginated GET and returns the nested paginator.
func (c *Client) List(ctx context.Context, path string, params ListParams) (*Page, error) {
	var envelope listEnvelope
	if err := c.GetJSON(ctx, path, params.Values(), &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

func (c *Client) PostJSON(ctx context.Context, path string, payload any) (*Envelope, error) {
	return c.sendJSON(ctx, http.MethodPost, path, payload)
}

func (c *Client) PutJSON(ctx context.Context, path string, payload any) (*Envelope, error) {
	return c.sendJSON(ctx, http.MethodPut, path, payload)
}

func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil, nil, "")
	if err != nil {
		return nil, err
	}
	return c.envelope(req)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) (*Envelope, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, internal.NewInternalError("failed to marshal request payload", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, nil, body, "application/json")
	if err != nil {
		return nil, err
	}
	return c.envelope(req)
}

// PostMultipart posts an assembled multipart payload, used for folder and
// user submissions that carry file attachments.
func (c *Client) PostMultipart(ctx context.Context, path string, payload *MultipartPayload) (*Envelope, error) {
	body, contentType, err := payload.Encode()
	if err != nil {
		return nil, internal.NewInternalError("failed to encode multipart payload", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body, contentType)
	if err != nil {
		return nil, err
	}
	return c.envelope(req)
}

// PostBinary posts a JSON payload and returns the raw response body, used by
// report generation where the API answers with a PDF. The suggested filename
// comes from Content-Disposition when the server sends one.
func (c *Client) PostBinary(ctx context.Context, path string, payload any) ([]byte, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to marshal request payload", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(data), "application/json")
	if err != nil {
		return nil, "", err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", c.errorFromResponse(resp)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to read binary response", err)
	}

	filename := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			filename = params["filename"]
		}
	}

	return content, filename, nil
}

// Ping checks that the API host answers at all. Any HTTP response counts as
// reachable; only transport failures are reported.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/", nil, nil, "")
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return internal.ErrBackendUnavailable.WithCause(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<12))
	return nil
}

// envelope executes the request and enforces the success envelope: non-2xx
// responses and envelopes whose status is not "success" both surface the
// server's message as the error shown to the operator.
func (c *Client) envelope(req *http.Request) (*Envelope, error) {
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internal.NewInternalError("failed to read backend response", err)
	}

	var envelope Envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &envelope); err != nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil, internal.NewInternalError("failed to decode backend response", err)
			}
			return nil, internal.NewExternalError("", resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, internal.NewExternalError(envelope.Message, resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode))
	}
	if !envelope.IsSuccess() {
		return nil, internal.NewExternalError(envelope.Message, http.StatusBadRequest, nil)
	}

	return &envelope, nil
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var envelope Envelope
	if len(body) > 0 && json.Unmarshal(body, &envelope) == nil && envelope.Message != "" {
		if resp.StatusCode == http.StatusNotFound {
			return internal.ErrRecordNotFound
		}
		return internal.NewExternalError(envelope.Message, resp.StatusCode, nil)
	}

	if resp.StatusCode == http.StatusNotFound {
		return internal.ErrRecordNotFound
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return internal.ErrSessionExpired
	}
	return internal.NewExternalError("", resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode))
}
