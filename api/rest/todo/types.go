package todo

import (
	"codeberg.org/todoai/server/internal/sessions"
	"codeberg.org/todoai/server/todoai/todos"
)

// query parameters for GET /todo; state is a JSON-encoded ToDoState
type UpdateQuery struct {
	Update    string `form:"update" binding:"required,max=4000"`
	State     string `form:"state"`
	SessionID string `form:"session_id" binding:"omitempty,uuid"`
}

type UpdateRequest struct {
	Update    string         `json:"update" binding:"required,max=4000"`
	State     map[string]any `json:"state,omitempty" swaggertype:"object"`
	SessionID string         `json:"session_id,omitempty" binding:"omitempty,uuid"`
}

type CreateSessionRequest struct {
	State map[string]any `json:"state,omitempty" swaggertype:"object"`
}

type SessionResponse struct {
	Session sessions.Session `json:"session"`
	State   todos.ToDoState  `json:"state"`
}
