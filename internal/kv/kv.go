// Package kv holds the key/value state that AI applications read and mutate
// through their tools. Values are plain JSON values.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned when seeding a store from something that is not a JSON object.
var ErrNotObject = errors.New("state must be a store or an object")

// Store is the state interface exposed to applications.
type Store interface {
	Write(ctx context.Context, key string, value any) error
	Read(ctx context.Context, key string) (any, bool, error)
	Delete(ctx context.Context, key string) error
	ReadAll(ctx context.Context) (map[string]any, error)
	ListKeys(ctx context.Context) ([]string, error)
}

// Backend opens namespaced stores, one per session.
type Backend interface {
	Open(ctx context.Context, namespace string) (Store, error)
	Drop(ctx context.Context, namespace string) error
	Close() error
}

// converts a struct or map into a top-level JSON object
func ToObject(v any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}

	if m, ok := v.(map[string]any); ok {
		return m, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, ErrNotObject
	}

	return obj, nil
}

// decodes the full contents of a store into out
func Decode(ctx context.Context, store Store, out any) error {
	all, err := store.ReadAll(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode state: %w", err)
	}

	return nil
}

// copies every key of obj into store
func Seed(ctx context.Context, store Store, obj map[string]any) error {
	for k, v := range obj {
		if err := store.Write(ctx, k, v); err != nil {
			return fmt.Errorf("failed to seed key %q: %w", k, err)
		}
	}

	return nil
}

// round-trips a value through JSON so stores only ever hold plain JSON values
func normalize(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON encodable: %w", err)
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}

	return out, nil
}
