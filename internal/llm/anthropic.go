package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	anthropicMessagesURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion      = "2023-06-01"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
)

type anthropicRequest struct {
	Model       string               `json:"model"`
	MaxTokens   int                  `json:"max_tokens"`
	System      string               `json:"system,omitempty"`
	Messages    []anthropicMessage   `json:"messages"`
	Tools       []anthropicTool      `json:"tools,omitempty"`
	ToolChoice  *anthropicToolChoice `json:"tool_choice,omitempty"`
	Temperature float32              `json:"temperature"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type anthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type anthropicToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type anthropicResponse struct {
	ID         string           `json:"id"`
	Model      string           `json:"model"`
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// talks to the Anthropic Messages API
type AnthropicClient struct {
	config     Config
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewAnthropicClient(config Config) *AnthropicClient {
	if config.Model == "" {
		config.Model = defaultAnthropicModel
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	url := anthropicMessagesURL
	if config.BaseURL != "" {
		url = strings.TrimRight(config.BaseURL, "/") + "/v1/messages"
	}

	return &AnthropicClient{
		config:     config,
		url:        url,
		httpClient: sharedHTTPClient,
		limiter:    newRateLimiter(config.RateLimit),
	}
}

func (c *AnthropicClient) Model() string {
	return c.config.Model
}

func (c *AnthropicClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body := anthropicRequest{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		System:      req.System,
		Messages:    toAnthropicMessages(req.Messages),
		Temperature: c.config.Temperature,
	}

	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}

	if req.Temperature != nil {
		body.Temperature = *req.Temperature
	}

	for _, tool := range req.Tools {
		body.Tools = append(body.Tools, anthropicTool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.Parameters,
		})
	}

	if req.ToolChoice != "" {
		body.ToolChoice = &anthropicToolChoice{Type: "tool", Name: req.ToolChoice}
	}

	headers := map[string]string{
		"x-api-key":         c.config.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var apiResp anthropicResponse
	if err := postJSON(ctx, c.httpClient, c.limiter, ProviderAnthropic, c.url, headers, body, &apiResp); err != nil {
		return nil, err
	}

	resp := &ChatResponse{
		StopReason: apiResp.StopReason,
		Model:      apiResp.Model,
		Usage: Usage{
			InputTokens:  apiResp.Usage.InputTokens,
			OutputTokens: apiResp.Usage.OutputTokens,
		},
	}

	var text []string
	for _, block := range apiResp.Content {
		switch block.Type {
		case "text":
			text = append(text, block.Text)
		case "tool_use":
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: normalizeArguments(block.Input),
			})
		}
	}

	resp.Content = strings.TrimSpace(strings.Join(text, "\n"))

	return resp, nil
}

// converts provider-neutral messages into Anthropic content blocks
func toAnthropicMessages(messages []Message) []anthropicMessage {
	out := make([]anthropicMessage, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleTool:
			blocks := make([]anthropicBlock, 0, len(msg.ToolResults))
			for _, result := range msg.ToolResults {
				blocks = append(blocks, anthropicBlock{
					Type:      "tool_result",
					ToolUseID: result.ToolCallID,
					Content:   result.Content,
					IsError:   result.IsError,
				})
			}
			out = append(out, anthropicMessage{Role: RoleUser, Content: blocks})

		case RoleAssistant:
			var blocks []anthropicBlock
			if msg.Content != "" {
				blocks = append(blocks, anthropicBlock{Type: "text", Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropicBlock{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Name,
					Input: normalizeArguments(call.Arguments),
				})
			}
			out = append(out, anthropicMessage{Role: RoleAssistant, Content: blocks})

		default:
			out = append(out, anthropicMessage{
				Role:    RoleUser,
				Content: []anthropicBlock{{Type: "text", Text: msg.Content}},
			})
		}
	}

	return out
}
