package todos

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"codeberg.org/todoai/server/internal/kv"
	"codeberg.org/todoai/server/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDoState_MarshalNeverNull(t *testing.T) {
	data, err := json.Marshal(ToDoResponse{Content: "nothing yet"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"nothing yet","state":{"todos":[]}}`, string(data))
}

func TestStateFromMap(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    int
		wantErr bool
	}{
		{name: "empty object", input: map[string]any{}, want: 0},
		{name: "null todos", input: map[string]any{"todos": nil}, want: 0},
		{
			name: "valid list and extra keys",
			input: map[string]any{
				"todos": []any{map[string]any{"title": "milk", "done": true}},
				"notes": "prefers mornings",
			},
			want: 1,
		},
		{name: "todos not a list", input: map[string]any{"todos": "milk"}, wantErr: true},
		{name: "missing title", input: map[string]any{"todos": []any{map[string]any{"done": false}}}, wantErr: true},
		{name: "wrong field type", input: map[string]any{"todos": []any{map[string]any{"title": 3}}}, wantErr: true},
		{name: "bad due date", input: map[string]any{"todos": []any{map[string]any{"title": "x", "due_date": "tomorrow"}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := StateFromMap(tt.input)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidState)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, state.Todos)
			assert.Len(t, state.Todos, tt.want)
		})
	}
}

func TestStateFromMap_DueDateLayouts(t *testing.T) {
	state, err := StateFromMap(map[string]any{"todos": []any{
		map[string]any{"title": "a", "due_date": "2024-05-01"},
		map[string]any{"title": "b", "due_date": "2024-05-01T09:30:00Z"},
		map[string]any{"title": "c", "due_date": ""},
	}})
	require.NoError(t, err)
	require.Len(t, state.Todos, 3)

	require.NotNil(t, state.Todos[0].DueDate)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), state.Todos[0].DueDate.UTC())
	assert.Equal(t, 9, state.Todos[1].DueDate.Hour())
	assert.Nil(t, state.Todos[2].DueDate)
}

func TestMapRoundTrip(t *testing.T) {
	due := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	state := ToDoState{Todos: []ToDo{{Title: "plan trip", DueDate: &due}}}

	m := state.Map()
	list, ok := m["todos"].([]any)
	require.True(t, ok)
	assert.Equal(t, "2024-06-01T12:00:00Z", list[0].(map[string]any)["due_date"])

	back, err := StateFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, state.Todos[0].Title, back.Todos[0].Title)
	assert.True(t, due.Equal(*back.Todos[0].DueDate))
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	client := llmtest.New(
		llmtest.ToolCall("t1", "write_state_key", map[string]any{
			"key":   "todos",
			"value": []any{map[string]any{"title": "call mom", "description": "", "done": false}},
		}),
		llmtest.Text("Added: call mom."),
	)

	store := kv.NewMemoryStore()
	app, err := NewAssistant(client, store)
	require.NoError(t, err)

	resp, err := Apply(ctx, app, "I need to call mom")
	require.NoError(t, err)
	assert.Equal(t, "Added: call mom.", resp.Content)
	require.Len(t, resp.State.Todos, 1)
	assert.Equal(t, "call mom", resp.State.Todos[0].Title)

	assert.Contains(t, client.Requests()[0].System, "an application called ToDo")
}

func TestApply_InvalidStateFromModel(t *testing.T) {
	client := llmtest.New(
		llmtest.ToolCall("t1", "write_state_key", map[string]any{"key": "todos", "value": "call mom"}),
		llmtest.Text("done"),
	)

	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, Seed(ctx, store, ToDoState{Todos: []ToDo{{Title: "water plants"}}}))

	app, err := NewAssistant(client, store)
	require.NoError(t, err)

	_, err = Apply(ctx, app, "call mom")
	assert.ErrorIs(t, err, ErrInvalidState)

	// the list from before the update is back in place
	state, err := StateFromStore(ctx, store)
	require.NoError(t, err)
	require.Len(t, state.Todos, 1)
	assert.Equal(t, "water plants", state.Todos[0].Title)
}

func TestApply_ProviderErrorRestoresRemovedKeys(t *testing.T) {
	ctx := context.Background()
	client := llmtest.New(
		llmtest.ToolCall("t1", "delete_state_key", map[string]any{"key": "todos"}),
	)

	store := kv.NewMemoryStore()
	require.NoError(t, Seed(ctx, store, ToDoState{Todos: []ToDo{{Title: "water plants"}}}))

	app, err := NewAssistant(client, store)
	require.NoError(t, err)

	_, err = Apply(ctx, app, "clear everything")
	assert.ErrorIs(t, err, llmtest.ErrScriptExhausted)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{StateKey}, keys)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	require.NoError(t, Seed(ctx, store, ToDoState{Todos: []ToDo{{Title: "water plants"}}}))

	state, err := StateFromStore(ctx, store)
	require.NoError(t, err)
	require.Len(t, state.Todos, 1)
	assert.Equal(t, "water plants", state.Todos[0].Title)
}
