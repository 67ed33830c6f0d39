package todos

import (
	"context"
	"fmt"

	"codeberg.org/todoai/server/internal/application"
	"codeberg.org/todoai/server/internal/kv"
	"codeberg.org/todoai/server/internal/llm"
	"codeberg.org/todoai/server/internal/logger"
)

const assistantName = "ToDo"

const assistantInstructions = `A simple to-do tracker. Users will give instructions to add, remove,
and update their to-dos.

Keep every to-do under the "todos" key as a list of objects with these fields:
- "title": string, required
- "description": string
- "due_date": RFC 3339 timestamp, omit it when there is no due date
- "done": boolean

After any change, write the whole "todos" list back with write_state_key. Reply with a short
confirmation of what changed.`

// builds the to-do application over store
func NewAssistant(client llm.ChatCompleter, store kv.Store) (*application.Application, error) {
	return application.New(client, application.Config{
		Name:         assistantName,
		Instructions: assistantInstructions,
		State:        store,
	})
}

// sends an update to the assistant and returns its reply with the resulting state.
// When the update fails the store is put back to what it held before.
func Apply(ctx context.Context, app *application.Application, update string) (*ToDoResponse, error) {
	store := app.State()

	before, err := store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	resp, err := apply(ctx, app, update)
	if err != nil {
		if rerr := restore(context.WithoutCancel(ctx), store, before); rerr != nil {
			logger.FromContext(ctx).Error("failed to restore state after a failed update", "error", rerr)
		}
		return nil, err
	}

	return resp, nil
}

func apply(ctx context.Context, app *application.Application, update string) (*ToDoResponse, error) {
	reply, err := app.Say(ctx, update)
	if err != nil {
		return nil, err
	}

	state, err := StateFromStore(ctx, app.State())
	if err != nil {
		return nil, fmt.Errorf("assistant left unusable state: %w", err)
	}

	return &ToDoResponse{Content: reply.Content, State: state}, nil
}

// drops keys written since snapshot was taken and writes the snapshot back
func restore(ctx context.Context, store kv.Store, snapshot map[string]any) error {
	keys, err := store.ListKeys(ctx)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if _, ok := snapshot[key]; ok {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			return err
		}
	}

	return kv.Seed(ctx, store, snapshot)
}
