package todos

import (
	"encoding/json"
	"errors"
	"time"
)

// state key holding the to-do list
const StateKey = "todos"

// returned when state cannot be decoded into a ToDoState or fails validation
var ErrInvalidState = errors.New("invalid to-do state")

type ToDo struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Done        bool       `json:"done"`
}

type ToDoState struct {
	Todos []ToDo `json:"todos" validate:"dive"`
}

// todos is always a list on the wire, never null
func (s ToDoState) MarshalJSON() ([]byte, error) {
	type alias ToDoState

	if s.Todos == nil {
		s.Todos = []ToDo{}
	}

	return json.Marshal(alias(s))
}

type ToDoResponse struct {
	Content   string    `json:"content"`
	State     ToDoState `json:"state"`
	SessionID string    `json:"session_id,omitempty"`
}
