package todos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codeberg.org/todoai/server/internal/kv"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// layouts accepted for due dates written by the model
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// decodes and validates a loose state object
func StateFromMap(m map[string]any) (ToDoState, error) {
	var state ToDoState

	if raw, ok := m[StateKey]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return state, fmt.Errorf("%w: %q must be a list", ErrInvalidState, StateKey)
		}

		for _, item := range list {
			if obj, ok := item.(map[string]any); ok {
				normalizeDueDate(obj)
			}
		}

		data, err := json.Marshal(list)
		if err != nil {
			return state, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}

		if err := json.Unmarshal(data, &state.Todos); err != nil {
			return state, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
	}

	if err := state.Validate(); err != nil {
		return state, err
	}

	if state.Todos == nil {
		state.Todos = []ToDo{}
	}

	return state, nil
}

// reads the to-do state back out of a store
func StateFromStore(ctx context.Context, store kv.Store) (ToDoState, error) {
	all, err := store.ReadAll(ctx)
	if err != nil {
		return ToDoState{}, fmt.Errorf("failed to read state: %w", err)
	}

	return StateFromMap(all)
}

// writes the to-do list into a store
func Seed(ctx context.Context, store kv.Store, state ToDoState) error {
	return kv.Seed(ctx, store, state.Map())
}

func (s ToDoState) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	return nil
}

// returns the state as a plain JSON object
func (s ToDoState) Map() map[string]any {
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]any{StateKey: []any{}}
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{StateKey: []any{}}
	}

	return out
}

// rewrites a parseable due_date string as RFC 3339
func normalizeDueDate(obj map[string]any) {
	s, ok := obj["due_date"].(string)
	if !ok {
		return
	}

	if s == "" {
		delete(obj, "due_date")
		return
	}

	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			obj["due_date"] = t.Format(time.RFC3339)
			return
		}
	}
}
