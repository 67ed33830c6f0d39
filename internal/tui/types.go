package tui

import (
	"net/http"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"codeberg.org/todoai/server/internal/sessions"
	"codeberg.org/todoai/server/todoai/todos"
)

// represents the current state of the TUI
type AppState int

const (
	StateConnecting AppState = iota
	StateChat
)

// chat roles rendered in the transcript
const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleError     = "error"
)

// main TUI application model
type Model struct {
	state     AppState
	width     int
	height    int
	err       error
	endpoint  string
	sessionID string
	client    *Client
	chat      *ChatModel
}

// one line of the conversation transcript
type ChatMessage struct {
	Role    string
	Content string
}

// chat pane plus the to-do list beside it
type ChatModel struct {
	input           textinput.Model
	viewport        viewport.Model
	spinner         spinner.Model
	glamourRenderer *glamour.TermRenderer
	width           int
	height          int
	listWidth       int
	ready           bool
	isFetching      bool
	history         []ChatMessage
	state           todos.ToDoState
	sessionID       string
	client          *Client
}

// REST client for the to-do API
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// non-2xx reply from the API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// a session and its current list
type SessionInfo struct {
	Session sessions.Session `json:"session"`
	State   todos.ToDoState  `json:"state"`
}

type updateRequest struct {
	Update    string `json:"update"`
	SessionID string `json:"session_id,omitempty"`
}

// sent once a session has been created or resumed
type SessionReadyMsg struct {
	SessionID string
	State     todos.ToDoState
}

// sent when the client cannot start
type ErrorMsg struct {
	err error
}

// sent when the assistant answers an update
type ResponseMsg struct {
	update   string
	response todos.ToDoResponse
}

// sent when an update fails
type ResponseErrorMsg struct {
	update string
	err    error
}
