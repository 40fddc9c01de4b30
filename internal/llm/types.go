package llm

import "encoding/json"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the API for structured JSON output conforming to Schema.
// When Validate is set, the response content is decoded and passed through it;
// the typed result ends up in Response.Parsed.
type ResponseFormat struct {
	Name     string
	Strict   bool
	Schema   map[string]interface{}
	Validate func(raw json.RawMessage) (interface{}, error)
}

// RequestOptions are per-call overrides. Nil pointer fields are omitted from
// the wire request entirely; the API applies its own defaults.
type RequestOptions struct {
	Model            string
	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Stop             []string
	ResponseFormat   *ResponseFormat
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the decoded result of one chat completion. Parsed is non-nil
// only when a validator was supplied and validation succeeded.
type Response struct {
	ID           string
	Model        string
	Content      string
	Parsed       interface{}
	Usage        Usage
	FinishReason string
}

// Wire types for the OpenAI-compatible chat completions endpoint.

type apiRequest struct {
	Model            string             `json:"model"`
	Messages         []Message          `json:"messages"`
	Temperature      *float64           `json:"temperature,omitempty"`
	MaxTokens        *int               `json:"max_tokens,omitempty"`
	TopP             *float64           `json:"top_p,omitempty"`
	FrequencyPenalty *float64           `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64           `json:"presence_penalty,omitempty"`
	Stop             []string           `json:"stop,omitempty"`
	ResponseFormat   *apiResponseFormat `json:"response_format,omitempty"`
}

type apiResponseFormat struct {
	Type       string        `json:"type"`
	JSONSchema apiJSONSchema `json:"json_schema"`
}

type apiJSONSchema struct {
	Name   string                 `json:"name"`
	Strict bool                   `json:"strict"`
	Schema map[string]interface{} `json:"schema"`
}

type apiResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}
