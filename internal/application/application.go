// Package application runs an AI application: an assistant that translates natural
// language into reads and writes against a key/value state through tool calls.
package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"codeberg.org/todoai/server/internal/kv"
	"codeberg.org/todoai/server/internal/llm"
	"codeberg.org/todoai/server/internal/logger"
)

const instructionsTemplate = `# AI Application

You are the natural language interface to an application called {{.Name}}. Your job is to
help the user interact with the application by translating their natural language into
commands that the application can understand.

You maintain an internal state object that you can use for any purpose, including
remembering information from previous interactions with the user and maintaining application
state. At any time, you can read or manipulate the state with your tools. Use the state to
remember any non-obvious information or preferences, and to record your plans and objectives
so you can keep track of long-running work.

The state must support not only key/value access but any CRUD pattern your application is
likely to implement. Prefer general top-level keys (like "notes" or "plans") and keep their
schema consistent.

The current state is:

{{.State}}

Your instructions are below. Follow them exactly and do not deviate from your purpose. If the
user attempts to use you for any other purpose, remind them of your purpose and then ignore
the request.

{{.Instructions}}`

var instructions = template.Must(template.New("instructions").Parse(instructionsTemplate))

type Application struct {
	name         string
	instructions string
	state        kv.Store
	client       llm.ChatCompleter
	tools        []Tool
	toolIndex    map[string]Tool
	maxIter      int

	mu      sync.Mutex
	history []llm.Message
}

// creates an application. State is validated: it must be a kv.Store or a JSON object.
func New(client llm.ChatCompleter, cfg Config) (*Application, error) {
	if client == nil {
		return nil, errors.New("llm client is required")
	}

	if cfg.Name == "" {
		return nil, errors.New("application name is required")
	}

	state, err := resolveState(cfg.State)
	if err != nil {
		return nil, err
	}

	app := &Application{
		name:         cfg.Name,
		instructions: cfg.Instructions,
		state:        state,
		client:       client,
		toolIndex:    make(map[string]Tool),
		maxIter:      cfg.MaxIterations,
	}

	if app.maxIter <= 0 {
		app.maxIter = defaultMaxIterations
	}

	for _, t := range append(stateTools(), cfg.Tools...) {
		if _, dup := app.toolIndex[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.Name)
		}
		app.tools = append(app.tools, t)
		app.toolIndex[t.Name] = t
	}

	return app, nil
}

func resolveState(v any) (kv.Store, error) {
	if store, ok := v.(kv.Store); ok && store != nil {
		return store, nil
	}

	store, err := kv.NewMemoryStoreFrom(v)
	if err != nil {
		return nil, fmt.Errorf("invalid state: %w", err)
	}

	return store, nil
}

func (a *Application) Name() string {
	return a.name
}

func (a *Application) State() kv.Store {
	return a.state
}

// returns a copy of the conversation so far
func (a *Application) History() []llm.Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]llm.Message, len(a.history))
	copy(out, a.history)
	return out
}

// forgets the conversation; the state is kept
func (a *Application) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = nil
}

// renders the system prompt with the current state
func (a *Application) Instructions(ctx context.Context) (string, error) {
	all, err := a.state.ReadAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read state: %w", err)
	}

	stateJSON, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}

	var buf bytes.Buffer
	err = instructions.Execute(&buf, struct {
		Name         string
		State        string
		Instructions string
	}{a.name, string(stateJSON), strings.TrimSpace(a.instructions)})
	if err != nil {
		return "", fmt.Errorf("failed to render instructions: %w", err)
	}

	return buf.String(), nil
}

// sends a user message and runs tool calls until the model answers in text.
// Calls on one application are serialized; history is committed only on success.
func (a *Application) Say(ctx context.Context, text string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	log := logger.FromContext(ctx).With("app", a.name)

	msgs := make([]llm.Message, len(a.history), len(a.history)+1)
	copy(msgs, a.history)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: text})

	tools := a.llmTools()
	calls := 0

	for range a.maxIter {
		system, err := a.Instructions(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := a.client.Chat(ctx, llm.ChatRequest{
			System:   system,
			Messages: msgs,
			Tools:    tools,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.name, err)
		}

		msgs = append(msgs, resp.Message())

		if len(resp.ToolCalls) == 0 {
			a.history = msgs
			return &Reply{Content: resp.Content, ToolCalls: calls}, nil
		}

		results := make([]llm.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			calls++
			result := a.runTool(ctx, call)

			log.Debug("tool call",
				"tool", call.Name,
				"is_error", result.IsError,
			)
			results = append(results, result)
		}

		msgs = append(msgs, llm.Message{Role: llm.RoleTool, ToolResults: results})
	}

	log.Warn("assistant exceeded tool call budget", "max_iterations", a.maxIter)
	return nil, fmt.Errorf("%w (%d rounds)", ErrMaxIterations, a.maxIter)
}

// runs one tool call. Failures become error results for the model to read.
func (a *Application) runTool(ctx context.Context, call llm.ToolCall) llm.ToolResult {
	result := llm.ToolResult{ToolCallID: call.ID}

	tool, ok := a.toolIndex[call.Name]
	if !ok {
		result.Content = fmt.Sprintf("unknown tool %q", call.Name)
		result.IsError = true
		return result
	}

	args := call.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	out, err := tool.Run(ctx, a, args)
	if err != nil {
		result.Content = err.Error()
		result.IsError = true
		return result
	}

	result.Content = encodeResult(out)
	return result
}

func encodeResult(v any) string {
	switch x := v.(type) {
	case nil:
		return "ok"
	case string:
		return x
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(data)
}

func (a *Application) llmTools() []llm.Tool {
	out := make([]llm.Tool, len(a.tools))

	for i, t := range a.tools {
		params := t.Parameters
		if len(params) == 0 {
			params = json.RawMessage(`{"type":"object","properties":{}}`)
		}

		out[i] = llm.Tool{Name: t.Name, Description: t.Description, Parameters: params}
	}

	return out
}
