package trainer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mlstudio/domain/training"
	apperrors "mlstudio/internal/errors"
	"mlstudio/ports"
)

// HTTPClient talks to a remote Training Service over JSON
type HTTPClient struct {
	BaseURL string
	Timeout time.Duration
	client  *http.Client
}

// NewHTTPClient creates a client for the service at baseURL
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("missing training service URL")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

var _ ports.TrainingService = (*HTTPClient)(nil)

// Name identifies the backend in health reports
func (c *HTTPClient) Name() string { return "http" }

// Train posts the request to /train. Non-2xx answers and undecodable
// bodies are transport errors.
func (c *HTTPClient) Train(ctx context.Context, req training.Request) (training.Response, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return training.Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/train", bytes.NewReader(raw))
	if err != nil {
		return training.Response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	respRaw, err := c.do(httpReq)
	if err != nil {
		return training.Response{}, err
	}

	var decoded training.Response
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return training.Response{}, apperrors.ExternalServiceError("training", fmt.Errorf("unmarshal response: %w", err))
	}
	return decoded, nil
}

// Health probes GET /health. Any failure reports offline alongside the error.
func (c *HTTPClient) Health(ctx context.Context) (training.HealthStatus, error) {
	offline := func(err error) (training.HealthStatus, error) {
		return training.HealthStatus{
			Status:  training.StatusOffline,
			Backend: c.Name(),
			Message: "Backend is not running",
		}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return offline(fmt.Errorf("build request: %w", err))
	}
	respRaw, err := c.do(httpReq)
	if err != nil {
		return offline(err)
	}

	var status training.HealthStatus
	if err := json.Unmarshal(respRaw, &status); err != nil {
		return offline(apperrors.ExternalServiceError("training", fmt.Errorf("unmarshal health: %w", err)))
	}
	if status.Status == "" {
		status.Status = training.StatusOnline
	}
	if status.Backend == "" {
		status.Backend = c.Name()
	}
	return status, nil
}

func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.ExternalServiceError("training", fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ExternalServiceError("training", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.ExternalServiceError("training", fmt.Errorf("http %d: %s", resp.StatusCode, errorDetail(respRaw)))
	}
	return respRaw, nil
}

// errorDetail pulls the message out of {"detail": ...} or {"message": ...} bodies
func errorDetail(body []byte) string {
	var payload struct {
		Detail  interface{} `json:"detail"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload.Detail.(string); ok && s != "" {
			return s
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
