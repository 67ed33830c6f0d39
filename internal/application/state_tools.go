package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type keyArgs struct {
	Key string `json:"key" validate:"required"`
}

type writeArgs struct {
	Key   string `json:"key" validate:"required"`
	Value any    `json:"value"`
}

func decodeArgs(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	return nil
}

// the built-in tools every application exposes over its state
func stateTools() []Tool {
	keySchema := json.RawMessage(`{"type":"object","properties":{"key":{"type":"string"}},"required":["key"]}`)
	noArgs := json.RawMessage(`{"type":"object","properties":{}}`)

	return []Tool{
		{
			Name:        "write_state_key",
			Description: "Writes a key to the state in order to remember it for later.",
			Parameters: json.RawMessage(`{"type":"object","properties":{` +
				`"key":{"type":"string"},` +
				`"value":{"description":"any JSON value: string, number, boolean, null, array or object"}` +
				`},"required":["key","value"]}`),
			Run: func(ctx context.Context, app *Application, raw json.RawMessage) (any, error) {
				var args writeArgs
				if err := decodeArgs(raw, &args); err != nil {
					return nil, err
				}

				return nil, app.state.Write(ctx, args.Key, args.Value)
			},
		},
		{
			Name:        "delete_state_key",
			Description: "Deletes a key from the state.",
			Parameters:  keySchema,
			Run: func(ctx context.Context, app *Application, raw json.RawMessage) (any, error) {
				var args keyArgs
				if err := decodeArgs(raw, &args); err != nil {
					return nil, err
				}

				return nil, app.state.Delete(ctx, args.Key)
			},
		},
		{
			Name:        "read_state_key",
			Description: "Returns the value of a key from the state.",
			Parameters:  keySchema,
			Run: func(ctx context.Context, app *Application, raw json.RawMessage) (any, error) {
				var args keyArgs
				if err := decodeArgs(raw, &args); err != nil {
					return nil, err
				}

				v, ok, err := app.state.Read(ctx, args.Key)
				if err != nil {
					return nil, err
				}

				if !ok {
					return "null", nil
				}

				return v, nil
			},
		},
		{
			Name:        "read_state",
			Description: "Returns the entire state.",
			Parameters:  noArgs,
			Run: func(ctx context.Context, app *Application, _ json.RawMessage) (any, error) {
				return app.state.ReadAll(ctx)
			},
		},
		{
			Name:        "list_state_keys",
			Description: "Returns the list of keys in the state.",
			Parameters:  noArgs,
			Run: func(ctx context.Context, app *Application, _ json.RawMessage) (any, error) {
				return app.state.ListKeys(ctx)
			},
		},
	}
}
