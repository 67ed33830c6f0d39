// Package aifn implements AI functions: a function signature and description whose
// body is produced by a language model. The model is forced to answer through a
// single tool whose one field carries the typed result.
package aifn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"text/template"

	"codeberg.org/todoai/server/internal/llm"
	"codeberg.org/todoai/server/internal/logger"
	"golang.org/x/sync/errgroup"
)

// an AI function returning T
type Function[T any] struct {
	def     Definition
	client  llm.ChatCompleter
	opts    options
	system  *template.Template
	tool    llm.Tool
	schema  json.RawMessage
	returns string
}

// creates a function from its definition. T defaults to string when callers have no better type.
func New[T any](client llm.ChatCompleter, def Definition, opts ...Option) (*Function[T], error) {
	if client == nil {
		return nil, errors.New("llm client is required")
	}

	if def.Name == "" {
		return nil, errors.New("function name is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.concurrency <= 0 {
		o.concurrency = defaultMapConcurrency
	}

	system, err := parsePrompt(def.Name, o.prompt)
	if err != nil {
		return nil, err
	}

	t := reflect.TypeFor[T]()

	schema, err := schemaFor(t)
	if err != nil {
		return nil, err
	}

	params, err := responseToolSchema(o.fieldName, o.fieldDescription, schema)
	if err != nil {
		return nil, err
	}

	if def.LengthParam != "" {
		if err := checkLengthParam(def, t); err != nil {
			return nil, err
		}
	}

	returns := def.Returns
	if returns == "" {
		returns = t.String()
	}

	return &Function[T]{
		def:    def,
		client: client,
		opts:   o,
		system: system,
		tool: llm.Tool{
			Name:        o.toolName,
			Description: o.toolDescription,
			Parameters:  params,
		},
		schema:  schema,
		returns: returns,
	}, nil
}

// like New but panics on error, for package-level catalogs
func Must[T any](f *Function[T], err error) *Function[T] {
	if err != nil {
		panic(err)
	}

	return f
}

func (f *Function[T]) Definition() Definition {
	return f.def
}

func (f *Function[T]) Signature() string {
	return signature(f.def, f.returns)
}

func (f *Function[T]) ReturnSchema() json.RawMessage {
	return f.schema
}

// binds args, asks the model for the most likely output and decodes it into T
func (f *Function[T]) Call(ctx context.Context, args Args) (T, error) {
	var zero T

	bound, err := bind(f.def, args)
	if err != nil {
		return zero, err
	}

	req, err := f.request(bound)
	if err != nil {
		return zero, err
	}

	want, exact := lengthArg(f.def, bound)

	for attempt := 1; ; attempt++ {
		out, err := f.complete(ctx, req)
		if err != nil || !exact {
			return out, err
		}

		fitted, ok := fitLength(out, want)
		if ok {
			return fitted, nil
		}

		if attempt == maxLengthAttempts {
			return zero, fmt.Errorf("%w: %s wanted %d items, got %d",
				ErrBadResponse, f.def.Name, want, reflect.ValueOf(out).Len())
		}

		logger.FromContext(ctx).Debug("ai function returned too few items, retrying",
			"function", f.def.Name,
			"want", want,
			"attempt", attempt,
		)
	}
}

func (f *Function[T]) complete(ctx context.Context, req llm.ChatRequest) (T, error) {
	var zero T

	resp, err := f.client.Chat(ctx, req)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", f.def.Name, err)
	}

	out, err := decodeTool[T](resp, f.tool.Name, f.opts.fieldName)
	if err != nil {
		logger.FromContext(ctx).Warn("ai function returned an unusable response",
			"function", f.def.Name,
			"model", resp.Model,
			"error", err,
		)
		return zero, err
	}

	return out, nil
}

// calls the function once per argument set, concurrently, keeping input order
func (f *Function[T]) Map(ctx context.Context, argSets []Args) ([]T, error) {
	// reject bad argument sets before any model call is made
	for i, args := range argSets {
		if _, err := bind(f.def, args); err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
	}

	results := make([]T, len(argSets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.concurrency)

	for i, args := range argSets {
		g.Go(func() error {
			out, err := f.Call(gctx, args)
			if err != nil {
				return fmt.Errorf("call %d: %w", i, err)
			}

			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (f *Function[T]) Invoke(ctx context.Context, args Args) (any, error) {
	return f.Call(ctx, args)
}

func (f *Function[T]) InvokeAll(ctx context.Context, argSets []Args) ([]any, error) {
	results, err := f.Map(ctx, argSets)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r
	}

	return out, nil
}

// builds the chat request that forces the response tool
func (f *Function[T]) request(bound []argument) (llm.ChatRequest, error) {
	data := promptData{
		Name:        f.def.Name,
		Signature:   f.Signature(),
		Description: f.def.Description,
		Arguments:   bound,
	}

	system, err := render(f.system, data)
	if err != nil {
		return llm.ChatRequest{}, err
	}

	user, err := render(userPrompt, data)
	if err != nil {
		return llm.ChatRequest{}, err
	}

	return llm.ChatRequest{
		System:     system,
		Messages:   []llm.Message{{Role: llm.RoleUser, Content: user}},
		Tools:      []llm.Tool{f.tool},
		ToolChoice: f.tool.Name,
		MaxTokens:  f.opts.maxTokens,
	}, nil
}

// extracts the result field from the forced tool call
func decodeTool[T any](resp *llm.ChatResponse, toolName, field string) (T, error) {
	var zero T

	for _, call := range resp.ToolCalls {
		if call.Name != toolName {
			continue
		}

		var payload map[string]json.RawMessage
		if err := json.Unmarshal(call.Arguments, &payload); err != nil {
			return zero, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}

		raw, ok := payload[field]
		if !ok {
			return zero, fmt.Errorf("%w: missing field %q", ErrBadResponse, field)
		}

		return decodeField[T](raw)
	}

	return zero, fmt.Errorf("%w: no %s tool call", ErrBadResponse, toolName)
}

// decodes a result value, accepting results the model wrapped in a JSON string
func decodeField[T any](raw json.RawMessage) (T, error) {
	var out T

	err := json.Unmarshal(raw, &out)
	if err == nil {
		return out, nil
	}

	var inner string
	if json.Unmarshal(raw, &inner) == nil {
		var retry T
		if json.Unmarshal([]byte(inner), &retry) == nil {
			return retry, nil
		}
	}

	return out, fmt.Errorf("%w: %v", ErrBadResponse, err)
}

// list results must hold exactly as many items as the named integer parameter asks for
func checkLengthParam(def Definition, t reflect.Type) error {
	if t.Kind() != reflect.Slice {
		return fmt.Errorf("%s: length parameter needs a list result, not %s", def.Name, t)
	}

	for _, p := range def.Params {
		if p.Name == def.LengthParam {
			if p.Type != TypeInteger {
				return fmt.Errorf("%s: length parameter %q must be an integer", def.Name, p.Name)
			}
			return nil
		}
	}

	return fmt.Errorf("%s: unknown length parameter %q", def.Name, def.LengthParam)
}

// returns the bound length argument, if the definition has one and the call set it
func lengthArg(def Definition, bound []argument) (int, bool) {
	if def.LengthParam == "" {
		return 0, false
	}

	for _, arg := range bound {
		if arg.Name == def.LengthParam {
			n, ok := arg.Value.(int)
			return n, ok
		}
	}

	return 0, false
}

// trims a list result to n items. Reports false when it holds fewer.
func fitLength[T any](out T, n int) (T, bool) {
	v := reflect.ValueOf(&out).Elem()
	if v.Len() < n {
		return out, false
	}

	v.Set(v.Slice(0, n))
	return out, true
}
