package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-4o-mini"
	DefaultTimeout = 60 * time.Second

	maxRetriesAllowed = 5
	maxMessages       = 50
	maxMessageChars   = 10000
	backoffBase       = time.Second
	backoffCap        = 10 * time.Second
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Client is a typed wrapper around an OpenAI-compatible chat completions API.
// It holds no state across calls beyond its immutable configuration.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxRetries int
	httpClient *http.Client

	// sleep is swapped out in tests so retry backoff can be observed
	// without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &Error{Kind: KindConfig, Message: "API key is required"}
	}
	if cfg.MaxRetries < 0 || cfg.MaxRetries > maxRetriesAllowed {
		return nil, &Error{Kind: KindConfig, Message: fmt.Sprintf("max retries must be between 0 and %d", maxRetriesAllowed)}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sleep:      sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoffDelay returns the wait before the retry that follows failed attempt
// number `attempt` (zero-based): 1s, 2s, 4s, ... capped at 10s.
func backoffDelay(attempt int) time.Duration {
	d := backoffBase << attempt
	if d > backoffCap || d <= 0 {
		return backoffCap
	}
	return d
}

func validateMessages(messages []Message) *Error {
	if len(messages) == 0 {
		return &Error{Kind: KindValidation, Message: "at least one message is required"}
	}
	if len(messages) > maxMessages {
		return &Error{Kind: KindValidation, Message: fmt.Sprintf("at most %d messages are allowed", maxMessages)}
	}
	for i, m := range messages {
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("message %d has invalid role %q", i, m.Role)}
		}
		if utf8.RuneCountInString(m.Content) > maxMessageChars {
			return &Error{Kind: KindValidation, Message: fmt.Sprintf("message %d exceeds %d characters", i, maxMessageChars)}
		}
	}
	return nil
}

// Chat performs one chat completion, retrying transient failures (429, 5xx,
// network errors) up to MaxRetries times with capped exponential backoff.
// Non-retryable responses are classified and returned immediately.
func (c *Client) Chat(ctx context.Context, messages []Message, opts *RequestOptions) (*Response, error) {
	if err := validateMessages(messages); err != nil {
		return nil, err
	}

	req := apiRequest{Model: c.model, Messages: messages}
	var format *ResponseFormat
	if opts != nil {
		if opts.Model != "" {
			req.Model = opts.Model
		}
		req.Temperature = opts.Temperature
		req.MaxTokens = opts.MaxTokens
		req.TopP = opts.TopP
		req.FrequencyPenalty = opts.FrequencyPenalty
		req.PresencePenalty = opts.PresencePenalty
		req.Stop = opts.Stop
		if opts.ResponseFormat != nil {
			format = opts.ResponseFormat
			req.ResponseFormat = &apiResponseFormat{
				Type: "json_schema",
				JSONSchema: apiJSONSchema{
					Name:   format.Name,
					Strict: format.Strict,
					Schema: format.Schema,
				},
			}
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: fmt.Sprintf("failed to encode request: %v", err)}
	}

	var lastStatus int
	var lastBody []byte
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, backoffDelay(attempt-1)); err != nil {
				return nil, err
			}
		}

		status, body, err := c.doRequest(ctx, payload)
		if err != nil {
			lastErr = err
			lastStatus = 0
			continue
		}

		if status == http.StatusTooManyRequests || status >= 500 {
			lastErr = nil
			lastStatus = status
			lastBody = body
			continue
		}

		if status < 200 || status >= 300 {
			return nil, classifyStatus(status, body)
		}

		return parseResponse(body, format)
	}

	if lastStatus > 0 {
		return nil, classifyStatus(lastStatus, lastBody)
	}
	return nil, &Error{Kind: KindAPI, Message: fmt.Sprintf("chat completion request failed: %v", lastErr)}
}

func (c *Client) doRequest(ctx context.Context, payload []byte) (int, []byte, error) {
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(hreq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func parseResponse(body []byte, format *ResponseFormat) (*Response, error) {
	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{Kind: KindResponseStructure, Message: fmt.Sprintf("malformed API response: %v", err)}
	}
	if len(raw.Choices) == 0 {
		return nil, &Error{Kind: KindResponseStructure, Message: "API response contains no choices"}
	}

	out := &Response{
		ID:           raw.ID,
		Model:        raw.Model,
		Content:      raw.Choices[0].Message.Content,
		Usage:        raw.Usage,
		FinishReason: raw.Choices[0].FinishReason,
	}

	if format != nil && format.Validate != nil && out.Content != "" {
		parsed, err := format.Validate(json.RawMessage(out.Content))
		if err != nil {
			return nil, &Error{
				Kind:       KindValidation,
				Message:    fmt.Sprintf("structured output validation failed: %v", err),
				RawContent: out.Content,
			}
		}
		out.Parsed = parsed
	}

	return out, nil
}
