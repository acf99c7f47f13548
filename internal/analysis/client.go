package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no analysis endpoint is set.
var ErrNotConfigured = errors.New("analysis endpoint not configured")

// StatusError reports a non-2xx answer from the analysis endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("analysis endpoint returned %d", e.StatusCode)
	}
	return fmt.Sprintf("analysis endpoint returned %d: %s", e.StatusCode, e.Body)
}

type analyzeRequest struct {
	UserID string `json:"user_id"`
}

// Client calls the external workload analysis agent. The agent writes new
// recommendation rows itself; a 2xx answer means it has finished.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient constructs a Client. A zero timeout leaves the call unbounded.
func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: strings.TrimSpace(endpoint),
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Analyze posts {"user_id": userID} once. It does not retry.
func (c *Client) Analyze(ctx context.Context, userID string) error {
	if c == nil || c.endpoint == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(analyzeRequest{UserID: userID})
	if err != nil {
		return fmt.Errorf("encode analysis request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call analysis endpoint: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("analysis endpoint answered",
		zap.String("user_id", userID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
