package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/todoai/server/api/rest/todo"
	"codeberg.org/todoai/server/internal/config"
	"codeberg.org/todoai/server/internal/kv"
	"codeberg.org/todoai/server/internal/llm/llmtest"
	"codeberg.org/todoai/server/internal/sessions"
	"codeberg.org/todoai/server/todoai/todos"
)

// serves the real to-do routes backed by a scripted model
func newTestServer(t *testing.T, client *llmtest.Client) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := kv.NewMemoryBackend()
	service := todos.NewService(client, backend, sessions.NewManager(time.Hour, backend.Drop))

	router := gin.New()
	todo.RegisterRoutes(router.Group("/api/v1"), service)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func addMilk() llmtest.ReplyFunc {
	return llmtest.ToolCall("t1", "write_state_key", map[string]any{
		"key":   "todos",
		"value": []any{map[string]any{"title": "buy milk", "description": "", "done": false}},
	})
}

func TestClientSessionFlow(t *testing.T) {
	srv := newTestServer(t, llmtest.New(addMilk(), llmtest.Text("Added milk.")))
	client := NewClient(config.Flags{Endpoint: srv.URL + "/"})
	ctx := context.Background()

	created, err := client.CreateSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, created.Session.ID)
	assert.Empty(t, created.State.Todos)

	resp, err := client.Update(ctx, created.Session.ID, "buy milk")
	require.NoError(t, err)
	assert.Equal(t, "Added milk.", resp.Content)
	assert.Equal(t, created.Session.ID, resp.SessionID)

	loaded, err := client.GetSession(ctx, created.Session.ID)
	require.NoError(t, err)
	require.Len(t, loaded.State.Todos, 1)
	assert.Equal(t, "buy milk", loaded.State.Todos[0].Title)
}

func TestClientAPIError(t *testing.T) {
	srv := newTestServer(t, llmtest.New())
	client := NewClient(config.Flags{Endpoint: srv.URL})

	_, err := client.GetSession(context.Background(), uuid.NewString())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "session_not_found", apiErr.Code)
}

func TestClientSendsToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"session":{"id":"s1"},"state":{"todos":[]}}`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.Flags{Endpoint: srv.URL, Token: "secret"})

	_, err := client.CreateSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", got)
}

func TestModelConversation(t *testing.T) {
	srv := newTestServer(t, llmtest.New(addMilk(), llmtest.Text("Added milk.")))
	app := NewApp(config.Flags{Endpoint: srv.URL})

	msg := app.Init()()
	ready, ok := msg.(SessionReadyMsg)
	require.True(t, ok, "expected SessionReadyMsg, got %T", msg)

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	app.Update(ready)
	assert.Equal(t, StateChat, app.state)
	assert.Equal(t, ready.SessionID, app.SessionID())

	app.chat.input.SetValue("  buy milk  ")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, app.chat.isFetching)
	assert.Empty(t, app.chat.input.Value())

	// a second enter while the first update is in flight is ignored
	app.chat.input.SetValue("again")
	_, again := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)
	app.chat.input.SetValue("")

	app.Update(cmd())
	assert.False(t, app.chat.isFetching)
	require.Len(t, app.chat.history, 2)
	assert.Equal(t, ChatMessage{Role: roleUser, Content: "buy milk"}, app.chat.history[0])
	assert.Equal(t, roleAssistant, app.chat.history[1].Role)
	require.Len(t, app.chat.state.Todos, 1)

	assert.Contains(t, app.View(), "[ ] buy milk")
}

func TestModelUpdateFailure(t *testing.T) {
	srv := newTestServer(t, llmtest.New(llmtest.Fail(context.DeadlineExceeded)))
	app := NewApp(config.Flags{Endpoint: srv.URL})

	app.Update(app.Init()())
	app.chat.input.SetValue("buy milk")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	_, ok := msg.(ResponseErrorMsg)
	require.True(t, ok, "expected ResponseErrorMsg, got %T", msg)

	app.Update(msg)
	require.Len(t, app.chat.history, 2)
	assert.Equal(t, roleError, app.chat.history[1].Role)
	assert.False(t, app.chat.isFetching)
}

func TestModelUnknownSession(t *testing.T) {
	srv := newTestServer(t, llmtest.New())
	app := NewApp(config.Flags{Endpoint: srv.URL, SessionID: uuid.NewString()})

	msg := app.Init()()
	_, ok := msg.(ErrorMsg)
	require.True(t, ok, "expected ErrorMsg, got %T", msg)

	app.Update(msg)
	assert.Contains(t, app.View(), "session_not_found")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRenderTodoList(t *testing.T) {
	assert.Contains(t, renderTodoList(todos.ToDoState{}), "nothing to do yet")

	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	meeting := time.Date(2024, 3, 2, 14, 30, 0, 0, time.UTC)

	out := renderTodoList(todos.ToDoState{Todos: []todos.ToDo{
		{Title: "file taxes", Description: "use the new form", DueDate: &due},
		{Title: "buy milk", Done: true},
		{Title: "standup", DueDate: &meeting},
	}})

	assert.Contains(t, out, "to-dos (2 open)")
	assert.Contains(t, out, "[ ] file taxes")
	assert.Contains(t, out, "use the new form")
	assert.Contains(t, out, "due Fri Mar 1 2024")
	assert.Contains(t, out, "[x] buy milk")
	assert.Contains(t, out, "due Sat Mar 2 2024 14:30")
}
