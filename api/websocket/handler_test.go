package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/todoai/server/internal/kv"
	"codeberg.org/todoai/server/internal/llm/llmtest"
	"codeberg.org/todoai/server/internal/sessions"
	ws "codeberg.org/todoai/server/internal/websocket"
	"codeberg.org/todoai/server/todoai/todos"
)

type testServer struct {
	url     string
	service *todos.Service
	hub     *ws.Hub
}

func newTestServer(t *testing.T, client *llmtest.Client) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := kv.NewMemoryBackend()
	service := todos.NewService(client, backend, sessions.NewManager(time.Hour, backend.Drop))
	hub := ws.NewHub()

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), hub, service, func(*http.Request) bool { return true })

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{url: "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/todo/ws", service: service, hub: hub}
}

func (s *testServer) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(s.url+query, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() }) //nolint:errcheck,gosec

	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, update string) ws.Message {
	t.Helper()

	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypeUpdate, Update: update}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket_EphemeralConversation(t *testing.T) {
	client := llmtest.New(
		llmtest.ToolCall("t1", "write_state_key", map[string]any{
			"key":   "todos",
			"value": []any{map[string]any{"title": "buy milk", "description": "", "done": false}},
		}),
		llmtest.Text("Added: buy milk."),
		llmtest.Text("You have one to-do."),
	)

	srv := newTestServer(t, client)
	conn := srv.dial(t, "")

	msg := exchange(t, conn, "remind me to buy milk")
	assert.Equal(t, ws.TypeResponse, msg.Type)
	assert.Equal(t, "Added: buy milk.", msg.Content)

	state, ok := msg.State.(map[string]any)
	require.True(t, ok)
	assert.Len(t, state["todos"], 1)

	msg = exchange(t, conn, "what's on my list?")
	assert.Equal(t, "You have one to-do.", msg.Content)

	// the second turn carries the first one
	requests := client.Requests()
	assert.Len(t, requests[len(requests)-1].Messages, 5)
}

func TestWebSocket_Session(t *testing.T) {
	client := llmtest.New(llmtest.Text("Nothing yet."))
	srv := newTestServer(t, client)

	session, _, err := srv.service.CreateSession(context.Background(), "", nil)
	require.NoError(t, err)

	conn := srv.dial(t, "?session_id="+session.ID)

	msg := exchange(t, conn, "anything due?")
	assert.Equal(t, ws.TypeResponse, msg.Type)
	assert.Equal(t, session.ID, msg.SessionID)
}

func TestWebSocket_UnknownSession(t *testing.T) {
	srv := newTestServer(t, llmtest.New())

	_, resp, err := websocket.DefaultDialer.Dial(srv.url+"?session_id=6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(srv.url+"?session_id=nope", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebSocket_ProviderFailure(t *testing.T) {
	srv := newTestServer(t, llmtest.New())
	conn := srv.dial(t, "")

	msg := exchange(t, conn, "add laundry")
	assert.Equal(t, ws.TypeError, msg.Type)
	assert.Equal(t, "llm_error", msg.Error)
	assert.NotEmpty(t, msg.Message)
}

func TestWebSocket_DisconnectForgetsConversation(t *testing.T) {
	srv := newTestServer(t, llmtest.New(llmtest.Text("hi")))
	conn := srv.dial(t, "")

	exchange(t, conn, "hello")
	require.Equal(t, 1, srv.hub.Count())

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return srv.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
