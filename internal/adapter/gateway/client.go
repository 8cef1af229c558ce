package gateway

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

	"github.com/roundtable-hq/orchestrator/internal/domain"
)

// Client invokes providers through an OpenAI-compatible completion endpoint.
type Client struct {
	baseURL        string
	apiKey         string
	costPerKTokens float64
	httpClient     *http.Client
}

// Ensure Client implements the Gateway interface.
var _ Gateway = (*Client)(nil)

// NewClient creates a new provider gateway client. The http.Client timeout is
// a transport safety net; the per-turn deadline comes from ctx.
func NewClient(baseURL, apiKey string, timeout time.Duration, costPerKTokens float64) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		apiKey:         apiKey,
		costPerKTokens: costPerKTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// chatCompletionRequest represents the OpenAI chat completion request.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

// chatCompletionResponse represents the OpenAI chat completion response.
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int          `json:"index"`
		Message      *ChatMessage `json:"message,omitempty"`
		FinishReason string       `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Usage *usage `json:"usage,omitempty"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// errorResponse represents an API error response.
type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code,omitempty"`
	} `json:"error"`
}

// Invoke sends the bounded context to the provider and returns one utterance
// with token/cost accounting.
func (c *Client) Invoke(ctx context.Context, req *InvokeRequest) (*domain.TurnOutcome, error) {
	started := time.Now()

	apiReq := &chatCompletionRequest{
		Model:    req.Provider.ModelID,
		Messages: req.Context,
	}
	if req.Provider.Temperature > 0 {
		t := req.Provider.Temperature
		apiReq.Temperature = &t
	}
	if req.MaxTokens > 0 {
		m := req.MaxTokens
		apiReq.MaxTokens = &m
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &Error{Code: "timeout", Message: err.Error(), Retryable: true}
		}
		return nil, &Error{Code: "transport", Message: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Code: "transport", Message: err.Error(), Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, &Error{
				Code:      errResp.Error.Type,
				Message:   errResp.Error.Message,
				Retryable: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
			}
		}
		return nil, &Error{
			Code:      fmt.Sprintf("http_%d", resp.StatusCode),
			Message:   string(respBody),
			Retryable: resp.StatusCode >= 500,
		}
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &Error{Code: "decode", Message: err.Error(), Retryable: false}
	}
	if len(result.Choices) == 0 || result.Choices[0].Message == nil {
		return nil, &Error{Code: "empty_choices", Message: "provider returned no choices", Retryable: false}
	}

	outcome := &domain.TurnOutcome{
		Content: result.Choices[0].Message.Content,
		Latency: time.Since(started),
	}
	if result.Usage != nil {
		outcome.TokensIn = result.Usage.PromptTokens
		outcome.TokensOut = result.Usage.CompletionTokens
		outcome.Cost = float64(result.Usage.TotalTokens) / 1000.0 * c.costPerKTokens
	}
	return outcome, nil
}
