package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"codeberg.org/todoai/server/internal/kv"
	"codeberg.org/todoai/server/internal/llm"
	"codeberg.org/todoai/server/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, client llm.ChatCompleter, cfg Config) *Application {
	t.Helper()

	if cfg.Name == "" {
		cfg.Name = "ToDo"
	}

	app, err := New(client, cfg)
	require.NoError(t, err)
	return app
}

func TestSay_RunsStateTools(t *testing.T) {
	ctx := context.Background()

	client := llmtest.New(
		llmtest.ToolCall("t1", "write_state_key", map[string]any{
			"key":   "todos",
			"value": []any{map[string]any{"title": "buy milk", "done": false}},
		}),
		llmtest.ToolCall("t2", "list_state_keys", map[string]any{}),
		llmtest.Text("Added buy milk."),
	)

	app := newTestApp(t, client, Config{Instructions: "Track to-dos."})

	reply, err := app.Say(ctx, "remind me to buy milk")
	require.NoError(t, err)
	assert.Equal(t, "Added buy milk.", reply.Content)
	assert.Equal(t, 2, reply.ToolCalls)

	v, ok, err := app.State().Read(ctx, "todos")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, v, 1)

	reqs := client.Requests()
	require.Len(t, reqs, 3)

	// every state tool is offered
	names := make([]string, 0, len(reqs[0].Tools))
	for _, tool := range reqs[0].Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"write_state_key", "delete_state_key", "read_state_key", "read_state", "list_state_keys"}, names)

	// the third request sees the written state and both tool results
	assert.Contains(t, reqs[2].System, `"buy milk"`)
	assert.Contains(t, reqs[2].System, "Track to-dos.")

	last := reqs[2].Messages[len(reqs[2].Messages)-1]
	assert.Equal(t, llm.RoleTool, last.Role)
	require.Len(t, last.ToolResults, 1)
	assert.Equal(t, "t2", last.ToolResults[0].ToolCallID)
	assert.JSONEq(t, `["todos"]`, last.ToolResults[0].Content)

	// user, assistant(tool), tool, assistant(tool), tool, assistant(text)
	assert.Len(t, app.History(), 6)
}

func TestSay_HistoryCarriesOver(t *testing.T) {
	client := llmtest.New(llmtest.Text("hello"), llmtest.Text("again"))
	app := newTestApp(t, client, Config{})

	_, err := app.Say(context.Background(), "hi")
	require.NoError(t, err)
	_, err = app.Say(context.Background(), "hi again")
	require.NoError(t, err)

	second := client.Requests()[1]
	require.Len(t, second.Messages, 3)
	assert.Equal(t, "hi", second.Messages[0].Content)
	assert.Equal(t, "hello", second.Messages[1].Content)

	app.Reset()
	assert.Empty(t, app.History())
}

func TestSay_ToolErrorsGoBackToModel(t *testing.T) {
	client := llmtest.New(
		llmtest.ToolCall("t1", "delete_state_key", map[string]any{}),
		llmtest.ToolCall("t2", "launch_rocket", map[string]any{}),
		llmtest.Text("sorry"),
	)
	app := newTestApp(t, client, Config{})

	reply, err := app.Say(context.Background(), "delete something")
	require.NoError(t, err)
	assert.Equal(t, "sorry", reply.Content)

	reqs := client.Requests()

	first := reqs[1].Messages[len(reqs[1].Messages)-1].ToolResults[0]
	assert.True(t, first.IsError)
	assert.Contains(t, first.Content, "invalid arguments")

	second := reqs[2].Messages[len(reqs[2].Messages)-1].ToolResults[0]
	assert.True(t, second.IsError)
	assert.Contains(t, second.Content, "unknown tool")
}

func TestSay_MaxIterations(t *testing.T) {
	client := llmtest.New().Always(llmtest.ToolCall("loop", "read_state", map[string]any{}))
	app := newTestApp(t, client, Config{MaxIterations: 3})

	_, err := app.Say(context.Background(), "spin")
	assert.ErrorIs(t, err, ErrMaxIterations)
	assert.Len(t, client.Requests(), 3)
	assert.Empty(t, app.History())
}

func TestSay_ProviderErrorLeavesHistory(t *testing.T) {
	client := llmtest.New(llmtest.Text("first"), llmtest.Fail(errors.New("upstream down")))
	app := newTestApp(t, client, Config{})

	_, err := app.Say(context.Background(), "one")
	require.NoError(t, err)

	_, err = app.Say(context.Background(), "two")
	require.Error(t, err)
	assert.Len(t, app.History(), 2)
}

func TestSay_EmptyMessage(t *testing.T) {
	app := newTestApp(t, llmtest.New(), Config{})

	_, err := app.Say(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestCustomToolReachesState(t *testing.T) {
	ctx := context.Background()

	counter := Tool{
		Name:        "count_keys",
		Description: "Counts state keys.",
		Run: func(ctx context.Context, app *Application, _ json.RawMessage) (any, error) {
			keys, err := app.State().ListKeys(ctx)
			return len(keys), err
		},
	}

	client := llmtest.New(
		llmtest.ToolCall("c1", "count_keys", nil),
		llmtest.Text("two keys"),
	)

	app := newTestApp(t, client, Config{
		State: map[string]any{"a": 1, "b": 2},
		Tools: []Tool{counter},
	})

	_, err := app.Say(ctx, "how many keys?")
	require.NoError(t, err)

	result := client.Requests()[1].Messages[2].ToolResults[0]
	assert.Equal(t, "2", result.Content)
	assert.False(t, result.IsError)
}

func TestNew_StateValidation(t *testing.T) {
	client := llmtest.New()

	store := kv.NewMemoryStore()
	app, err := New(client, Config{Name: "x", State: store})
	require.NoError(t, err)
	assert.Same(t, store, app.State())

	_, err = New(client, Config{Name: "x", State: struct {
		Todos []string `json:"todos"`
	}{}})
	require.NoError(t, err)

	_, err = New(client, Config{Name: "x", State: 42})
	assert.ErrorIs(t, err, kv.ErrNotObject)

	_, err = New(client, Config{Name: "x", Tools: []Tool{{Name: "read_state"}}})
	assert.Error(t, err)

	_, err = New(nil, Config{Name: "x"})
	assert.Error(t, err)
}

func TestInstructions_RendersState(t *testing.T) {
	app := newTestApp(t, llmtest.New(), Config{
		Name:         "Notes",
		Instructions: "  Keep notes.  ",
		State:        map[string]any{"notes": []string{"a"}},
	})

	text, err := app.Instructions(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "an application called Notes")
	assert.Contains(t, text, `"notes": [`)
	assert.Contains(t, text, "Keep notes.")
}
