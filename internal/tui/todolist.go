package tui

import (
	"fmt"
	"strings"
	"time"

	"codeberg.org/todoai/server/todoai/todos"
)

// renders the to-do list pane
func renderTodoList(state todos.ToDoState) string {
	var b strings.Builder

	open := 0
	for _, todo := range state.Todos {
		if !todo.Done {
			open++
		}
	}

	b.WriteString(listHeaderStyle.Render(fmt.Sprintf("to-dos (%d open)", open)))
	b.WriteString("\n")

	if len(state.Todos) == 0 {
		b.WriteString(infoStyle.Render("nothing to do yet"))
		return b.String()
	}

	for i, todo := range state.Todos {
		if i > 0 {
			b.WriteString("\n")
		}

		if todo.Done {
			b.WriteString("[x] " + todoDoneStyle.Render(todo.Title))
		} else {
			b.WriteString("[ ] " + todoOpenStyle.Render(todo.Title))
		}

		if todo.Description != "" {
			b.WriteString("\n")
			b.WriteString(todoDetailStyle.Render(todo.Description))
		}

		if todo.DueDate != nil {
			b.WriteString("\n")
			b.WriteString(todoDueStyle.Render("due " + formatDue(*todo.DueDate)))
		}
	}

	return b.String()
}

// drops the clock when a due date falls on midnight
func formatDue(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("Mon Jan 2 2006")
	}

	return t.Format("Mon Jan 2 2006 15:04")
}
