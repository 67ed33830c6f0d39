package application

import (
	"context"
	"encoding/json"
	"errors"
)

const defaultMaxIterations = 10

var (
	ErrMaxIterations = errors.New("assistant exceeded its tool call budget")
	ErrEmptyMessage  = errors.New("message cannot be empty")
)

// a tool the model can call. Run receives the owning application so it can reach the state.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON schema object; empty means no parameters
	Run         func(ctx context.Context, app *Application, args json.RawMessage) (any, error)
}

type Config struct {
	Name         string
	Instructions string
	// a kv.Store, or a struct or map that seeds an in-memory store; nil starts empty
	State         any
	Tools         []Tool
	MaxIterations int
}

// the assistant's answer to one Say call
type Reply struct {
	Content   string `json:"content"`
	ToolCalls int    `json:"tool_calls"`
}
