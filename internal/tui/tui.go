// Package tui is a terminal client for the to-do assistant.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/todoai/server/internal/config"
)

func NewApp(flags config.Flags) *Model {
	client := NewClient(flags)

	return &Model{
		state:     StateConnecting,
		endpoint:  client.endpoint,
		sessionID: flags.SessionID,
		client:    client,
		chat:      NewChat(client),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.client.ConnectCmd(m.sessionID)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// a failed connection leaves nothing to do but leave
		if m.err != nil && (msg.String() == "esc" || msg.String() == "q") {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chat, _ = m.chat.Update(msg)
		return m, nil

	case ErrorMsg:
		m.err = msg.err
		return m, nil

	case SessionReadyMsg:
		m.state = StateChat
		m.sessionID = msg.SessionID
		m.chat.SetSession(msg.SessionID, msg.State)
		return m, m.chat.Init()
	}

	if m.state != StateChat {
		return m, nil
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)

	return m, cmd
}

func (m *Model) View() string {
	if m.err != nil {
		return errorView(m.err)
	}

	switch m.state {
	case StateConnecting:
		return infoStyle.Render(fmt.Sprintf("\n  connecting to %s...\n", m.endpoint))

	case StateChat:
		return m.chat.View()

	default:
		return "Unknown state"
	}
}

// session the client is bound to, empty until connected
func (m *Model) SessionID() string {
	return m.sessionID
}

func errorView(err error) string {
	return fmt.Sprintf("\n  Error: %v\n\n  Press Ctrl+C to exit\n", err)
}
