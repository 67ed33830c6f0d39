package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	openaiChatURL      = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel = "gpt-4o-mini"
)

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Tools       []openaiTool    `json:"tools,omitempty"`
	ToolChoice  any             `json:"tool_choice,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float32         `json:"temperature"`
}

type openaiMessage struct {
	Role       string           `json:"role"`
	Content    *string          `json:"content"`
	ToolCalls  []openaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openaiTool struct {
	Type     string         `json:"type"`
	Function openaiFunction `json:"function"`
}

type openaiFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type openaiToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openaiResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int           `json:"index"`
		Message      openaiMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// talks to the OpenAI Chat Completions API
type OpenAIClient struct {
	config     Config
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewOpenAIClient(config Config) *OpenAIClient {
	if config.Model == "" {
		config.Model = defaultOpenAIModel
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	url := openaiChatURL
	if config.BaseURL != "" {
		url = strings.TrimRight(config.BaseURL, "/") + "/v1/chat/completions"
	}

	return &OpenAIClient{
		config:     config,
		url:        url,
		httpClient: sharedHTTPClient,
		limiter:    newRateLimiter(config.RateLimit),
	}
}

func (c *OpenAIClient) Model() string {
	return c.config.Model
}

func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body := openaiRequest{
		Model:       c.config.Model,
		Messages:    toOpenAIMessages(req.System, req.Messages),
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}

	if req.Temperature != nil {
		body.Temperature = *req.Temperature
	}

	for _, tool := range req.Tools {
		body.Tools = append(body.Tools, openaiTool{
			Type: "function",
			Function: openaiFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	if req.ToolChoice != "" {
		body.ToolChoice = map[string]any{
			"type":     "function",
			"function": map[string]string{"name": req.ToolChoice},
		}
	}

	headers := map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", c.config.APIKey),
	}

	var apiResp openaiResponse
	if err := postJSON(ctx, c.httpClient, c.limiter, ProviderOpenAI, c.url, headers, body, &apiResp); err != nil {
		return nil, err
	}

	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := apiResp.Choices[0]
	resp := &ChatResponse{
		StopReason: choice.FinishReason,
		Model:      apiResp.Model,
		Usage: Usage{
			InputTokens:  apiResp.Usage.PromptTokens,
			OutputTokens: apiResp.Usage.CompletionTokens,
		},
	}

	if choice.Message.Content != nil {
		resp.Content = strings.TrimSpace(*choice.Message.Content)
	}

	for _, call := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: normalizeArguments(json.RawMessage(call.Function.Arguments)),
		})
	}

	return resp, nil
}

// converts provider-neutral messages into chat completion messages
func toOpenAIMessages(system string, messages []Message) []openaiMessage {
	out := make([]openaiMessage, 0, len(messages)+1)

	if system != "" {
		out = append(out, openaiMessage{Role: "system", Content: &system})
	}

	for _, msg := range messages {
		switch msg.Role {
		case RoleTool:
			// one message per result
			for _, result := range msg.ToolResults {
				content := result.Content
				out = append(out, openaiMessage{
					Role:       RoleTool,
					Content:    &content,
					ToolCallID: result.ToolCallID,
				})
			}

		case RoleAssistant:
			m := openaiMessage{Role: RoleAssistant}
			if msg.Content != "" {
				content := msg.Content
				m.Content = &content
			}
			for _, call := range msg.ToolCalls {
				tc := openaiToolCall{ID: call.ID, Type: "function"}
				tc.Function.Name = call.Name
				tc.Function.Arguments = string(normalizeArguments(call.Arguments))
				m.ToolCalls = append(m.ToolCalls, tc)
			}
			out = append(out, m)

		default:
			content := msg.Content
			out = append(out, openaiMessage{Role: RoleUser, Content: &content})
		}
	}

	return out
}
