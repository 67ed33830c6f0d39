package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// represents different LLM providers
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// sends a chat request to a model and returns its reply
type ChatCompleter interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Model() string
}

// a function the model may call; Parameters is a JSON schema object
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// a single tool invocation requested by the model
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// the outcome of a tool call, sent back to the model
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// one conversation turn. Assistant turns may carry tool calls; tool turns carry results.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

type ChatRequest struct {
	System      string
	Messages    []Message
	Tools       []Tool
	ToolChoice  string // forces the named tool; empty lets the model decide
	MaxTokens   int
	Temperature *float32
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type ChatResponse struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string
	Model      string
	Usage      Usage
}

// returns the assistant message to append to the conversation
func (r *ChatResponse) Message() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   r.Content,
		ToolCalls: r.ToolCalls,
	}
}

// returned when the provider answers with a non-200 status
type APIError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API request failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// holds configuration for LLM initialization
type Config struct {
	Provider    Provider
	APIKey      string
	Model       string
	BaseURL     string  // overrides the provider endpoint
	MaxTokens   int     // default max tokens per response
	Temperature float32 // default sampling temperature
	RateLimit   float64 // requests per second, 0 uses the default
}
