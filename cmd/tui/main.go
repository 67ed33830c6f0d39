package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/todoai/server/internal/config"
	"codeberg.org/todoai/server/internal/tui"
)

func main() {
	flags := config.ParseTUIFlags(os.Args[1:])

	app := tui.NewApp(flags)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running todoai: %v\n", err)
		os.Exit(1)
	}

	if id := app.SessionID(); id != "" {
		fmt.Printf("resume this list with: todoai-tui -session %s\n", id)
	}
}
