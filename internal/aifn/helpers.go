package aifn

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"codeberg.org/todoai/server/internal/llm"
	"codeberg.org/todoai/server/internal/logger"
)

const castPrompt = `Your job is to convert the data the user provides into the output format
of the FormatResponse tool. Keep the meaning of the data; only its form changes.`

const extractPrompt = `Your job is to extract every entity of the requested kind from the data the
user provides. Return them in the order they appear, with an empty list when there are none.`

const classifyPrompt = `Your job is to classify the data the user provides. Answer with the single
label that fits it best, exactly as written:
`

const generatePrompt = `Your job is to generate %d varied, realistic examples of the requested output
type. Return exactly %d items.`

// settings for the one-shot helpers
type TaskOption func(*taskOptions)

type taskOptions struct {
	instructions string
	temperature  float32
	schema       json.RawMessage
	maxTokens    int
}

// adds guidance to the task prompt
func WithInstructions(text string) TaskOption {
	return func(o *taskOptions) { o.instructions = text }
}

func WithTemperature(t float32) TaskOption {
	return func(o *taskOptions) { o.temperature = t }
}

// replaces the schema reflected from the result type. Extract and Generate treat it as the item schema.
func WithSchema(schema json.RawMessage) TaskOption {
	return func(o *taskOptions) { o.schema = schema }
}

func WithTaskMaxTokens(n int) TaskOption {
	return func(o *taskOptions) { o.maxTokens = n }
}

func taskSettings(temperature float32, opts []TaskOption) taskOptions {
	o := taskOptions{temperature: temperature}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// converts data into T
func Cast[T any](ctx context.Context, client llm.ChatCompleter, data string, opts ...TaskOption) (T, error) {
	var zero T

	if strings.TrimSpace(data) == "" {
		return zero, &ArgumentError{Param: "data", Reason: "is required"}
	}

	o := taskSettings(0, opts)

	schema, err := resultSchema[T](o.schema, false)
	if err != nil {
		return zero, err
	}

	return runTask[T](ctx, client, "cast", castPrompt, data, schema, o)
}

// returns every T found in data
func Extract[T any](ctx context.Context, client llm.ChatCompleter, data string, opts ...TaskOption) ([]T, error) {
	if strings.TrimSpace(data) == "" {
		return nil, &ArgumentError{Param: "data", Reason: "is required"}
	}

	o := taskSettings(0, opts)

	schema, err := resultSchema[[]T](o.schema, true)
	if err != nil {
		return nil, err
	}

	out, err := runTask[[]T](ctx, client, "extract", extractPrompt, data, schema, o)
	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []T{}
	}

	return out, nil
}

// picks the label in labels that best fits data
func Classify(ctx context.Context, client llm.ChatCompleter, data string, labels []string, opts ...TaskOption) (string, error) {
	if strings.TrimSpace(data) == "" {
		return "", &ArgumentError{Param: "data", Reason: "is required"}
	}

	if len(labels) == 0 {
		return "", &ArgumentError{Param: "labels", Reason: "needs at least one label"}
	}

	o := taskSettings(0, opts)

	schema, err := json.Marshal(map[string]any{"type": "string", "enum": labels})
	if err != nil {
		return "", fmt.Errorf("failed to encode label schema: %w", err)
	}

	var system strings.Builder
	system.WriteString(classifyPrompt)
	for _, label := range labels {
		system.WriteString("\n- " + label)
	}

	label, err := runTask[string](ctx, client, "classify", system.String(), data, schema, o)
	if err != nil {
		return "", err
	}

	if !slices.Contains(labels, label) {
		return "", fmt.Errorf("%w: %q is not one of the labels", ErrBadResponse, label)
	}

	return label, nil
}

// produces exactly n values of T, asking again when the model returns fewer
func Generate[T any](ctx context.Context, client llm.ChatCompleter, n int, opts ...TaskOption) ([]T, error) {
	if n < 0 {
		return nil, &ArgumentError{Param: "n", Reason: "must not be negative"}
	}

	if n == 0 {
		return []T{}, nil
	}

	// repeated attempts need room to differ
	o := taskSettings(1, opts)

	schema, err := resultSchema[[]T](o.schema, true)
	if err != nil {
		return nil, err
	}

	system := fmt.Sprintf(generatePrompt, n, n)
	user := fmt.Sprintf("Generate %d items.", n)

	got := 0
	for attempt := 1; attempt <= maxLengthAttempts; attempt++ {
		out, err := runTask[[]T](ctx, client, "generate", system, user, schema, o)
		if err != nil {
			return nil, err
		}

		if fitted, ok := fitLength(out, n); ok {
			return fitted, nil
		}

		got = len(out)
		logger.FromContext(ctx).Debug("generate returned too few items, retrying",
			"want", n,
			"got", got,
			"attempt", attempt,
		)
	}

	return nil, fmt.Errorf("%w: generate wanted %d items, got %d", ErrBadResponse, n, got)
}

// picks the caller's schema over the one reflected from T. A caller schema describes
// one item when the result is a list.
func resultSchema[T any](override json.RawMessage, list bool) (json.RawMessage, error) {
	if len(override) == 0 {
		return schemaFor(reflect.TypeFor[T]())
	}

	var object map[string]any
	if err := json.Unmarshal(override, &object); err != nil || object == nil {
		return nil, &ArgumentError{Param: "schema", Reason: "must be a JSON object"}
	}

	if !list {
		return override, nil
	}

	data, err := json.Marshal(map[string]any{"type": "array", "items": override})
	if err != nil {
		return nil, fmt.Errorf("failed to encode list schema: %w", err)
	}

	return data, nil
}

// sends one request that forces the response tool and decodes its field into T
func runTask[T any](ctx context.Context, client llm.ChatCompleter, name, system, user string, schema json.RawMessage, o taskOptions) (T, error) {
	var zero T

	if client == nil {
		return zero, fmt.Errorf("%s: llm client is required", name)
	}

	params, err := responseToolSchema(defaultFieldName, defaultFieldDescription, schema)
	if err != nil {
		return zero, err
	}

	if o.instructions != "" {
		system += "\n\nAdditional instructions: " + strings.TrimSpace(o.instructions)
	}

	temperature := o.temperature
	tool := llm.Tool{Name: defaultToolName, Description: defaultToolDescription, Parameters: params}

	resp, err := client.Chat(ctx, llm.ChatRequest{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		Tools:       []llm.Tool{tool},
		ToolChoice:  tool.Name,
		MaxTokens:   o.maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return zero, fmt.Errorf("%s: %w", name, err)
	}

	out, err := decodeTool[T](resp, tool.Name, defaultFieldName)
	if err != nil {
		logger.FromContext(ctx).Warn("ai task returned an unusable response",
			"task", name,
			"model", resp.Model,
			"error", err,
		)
		return zero, err
	}

	return out, nil
}
