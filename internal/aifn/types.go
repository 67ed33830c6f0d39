package aifn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// JSON types a parameter can declare
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

const (
	defaultToolName         = "FormatResponse"
	defaultToolDescription  = "Formats the response."
	defaultFieldName        = "data"
	defaultFieldDescription = "The data to format."
	defaultMapConcurrency   = 8

	// model calls made for a list result that comes back short
	maxLengthAttempts = 3
)

var (
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrUnknownFunction  = errors.New("unknown function")
	ErrDuplicateName    = errors.New("function already registered")
	ErrBadResponse      = errors.New("model response could not be decoded")
)

// loose call arguments keyed by parameter name
type Args map[string]any

type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Default     any       `json:"default,omitempty"`
	Required    bool      `json:"required"`
	// go-playground/validator tag applied after coercion, e.g. "gte=0,lte=50"
	Validate string `json:"validate,omitempty"`
}

// describes a function whose body is generated by a model
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"parameters"`
	// overrides the return type shown in the signature
	Returns string `json:"-"`
	// integer parameter the list result's length must match. Longer results are trimmed.
	LengthParam string `json:"-"`
}

// the type-erased view of a Function used by the registry and the HTTP layer
type Invoker interface {
	Definition() Definition
	Signature() string
	ReturnSchema() json.RawMessage
	Invoke(ctx context.Context, args Args) (any, error)
	InvokeAll(ctx context.Context, argSets []Args) ([]any, error)
}

// reports which argument failed binding and why
type ArgumentError struct {
	Param  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %q: %s", e.Param, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArguments
}

// configures a Function
type Option func(*options)

type options struct {
	prompt           string
	toolName         string
	toolDescription  string
	fieldName        string
	fieldDescription string
	concurrency      int
	maxTokens        int
}

// replaces the system prompt template. The template sees .Name, .Signature and .Description.
func WithPrompt(prompt string) Option {
	return func(o *options) { o.prompt = prompt }
}

// renames the forced response tool
func WithTool(name, description string) Option {
	return func(o *options) {
		o.toolName = name
		o.toolDescription = description
	}
}

// renames the single field the model fills with the result
func WithField(name, description string) Option {
	return func(o *options) {
		o.fieldName = name
		o.fieldDescription = description
	}
}

// bounds how many calls Map runs at once
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

func defaultOptions() options {
	return options{
		prompt:           defaultSystemPrompt,
		toolName:         defaultToolName,
		toolDescription:  defaultToolDescription,
		fieldName:        defaultFieldName,
		fieldDescription: defaultFieldDescription,
		concurrency:      defaultMapConcurrency,
	}
}
