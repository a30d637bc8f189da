// Package assistant calls the LLM gateway. The gateway contract is a single
// endpoint taking {action, data} and answering {response}.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/metrics"
)

// Action selects the gateway behaviour.
type Action string

const (
	ActionChat                 Action = "chat"
	ActionStudyRecommendations Action = "study_recommendations"
	ActionDraftNotice          Action = "draft_notice"
	ActionAttendanceInsights   Action = "attendance_insights"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 2048

type request struct {
	Action Action      `json:"action"`
	Data   interface{} `json:"data"`
}

type response struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Client is a JSON client for the gateway.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client. An empty baseURL yields a client whose calls fail with
// apperrors.ErrAssistantNotConfigured.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a gateway URL is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Invoke sends one action and returns the gateway's text response.
func (c *Client) Invoke(ctx context.Context, action Action, data interface{}) (string, error) {
	if !c.Configured() {
		return "", apperrors.ErrAssistantNotConfigured
	}

	start := time.Now()
	text, err := c.invoke(ctx, action, data)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.AssistantRequests.WithLabelValues(string(action), outcome).Observe(time.Since(start).Seconds())
	return text, err
}

func (c *Client) invoke(ctx context.Context, action Action, data interface{}) (string, error) {
	body, err := json.Marshal(request{Action: action, Data: data})
	if err != nil {
		return "", fmt.Errorf("encode assistant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build assistant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrAssistantFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: gateway error %s: %s", apperrors.ErrAssistantFailed, resp.Status, strings.TrimSpace(string(b)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", apperrors.ErrAssistantFailed, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", apperrors.ErrAssistantFailed, out.Error)
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", fmt.Errorf("%w: empty response", apperrors.ErrAssistantFailed)
	}
	return out.Response, nil
}
