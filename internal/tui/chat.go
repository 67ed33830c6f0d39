package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"codeberg.org/todoai/server/todoai/todos"
)

const (
	maxUpdateLength = 4000
	minListWidth    = 24
	maxListWidth    = 40
	headerHeight    = 2
	footerHeight    = 4 // input box plus status line
	paneChrome      = 2 // border
)

// returns a chat model bound to client
func NewChat(client *Client) *ChatModel {
	ti := textinput.New()
	ti.Placeholder = "tell me what to add, finish or change..."
	ti.Focus()
	ti.CharLimit = maxUpdateLength
	ti.Width = 80
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorLightGray)
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorWhite)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorGray)

	return &ChatModel{
		input:   ti,
		spinner: sp,
		client:  client,
		history: []ChatMessage{},
	}
}

func (m *ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// binds the chat to a session and its current list
func (m *ChatModel) SetSession(sessionID string, state todos.ToDoState) {
	m.sessionID = sessionID
	m.state = state
	m.refresh()
}

func (m *ChatModel) Update(msg tea.Msg) (*ChatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m.send()

		case "ctrl+l":
			m.history = []ChatMessage{}
			m.refresh()
			return m, nil

		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case ResponseMsg:
		m.isFetching = false
		m.state = msg.response.State
		m.history = append(m.history, ChatMessage{Role: roleAssistant, Content: msg.response.Content})
		m.input.Focus()
		m.refresh()
		return m, nil

	case ResponseErrorMsg:
		m.isFetching = false
		m.history = append(m.history, ChatMessage{Role: roleError, Content: msg.err.Error()})
		m.input.Focus()
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ChatModel) send() (*ChatModel, tea.Cmd) {
	update := strings.TrimSpace(m.input.Value())
	if update == "" || m.isFetching {
		return m, nil
	}

	m.isFetching = true
	m.input.SetValue("")
	m.history = append(m.history, ChatMessage{Role: roleUser, Content: update})
	m.refresh()

	return m, m.client.UpdateCmd(m.sessionID, update)
}

func (m *ChatModel) resize(width, height int) {
	m.width = width
	m.height = height

	m.listWidth = min(max(width/3, minListWidth), maxListWidth)
	chatWidth := max(width-m.listWidth-2*paneChrome-2, 10)
	bodyHeight := max(height-headerHeight-footerHeight-paneChrome, 3)

	if !m.ready {
		m.viewport = viewport.New(chatWidth, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = bodyHeight
	}

	m.input.Width = max(width-8, 10)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(chatWidth),
	)
	if err == nil {
		m.glamourRenderer = renderer
	}

	m.refresh()
}

// re-renders the transcript into the viewport and scrolls to the newest line
func (m *ChatModel) refresh() {
	if !m.ready {
		return
	}

	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m *ChatModel) renderHistory() string {
	if len(m.history) == 0 {
		return infoStyle.Render("ready! describe what needs doing and press enter.")
	}

	var b strings.Builder

	for i, msg := range m.history {
		if i > 0 {
			b.WriteString("\n")
		}

		switch msg.Role {
		case roleUser:
			b.WriteString(userStyle.Render("you: " + msg.Content))
			b.WriteString("\n")

		case roleError:
			b.WriteString(errorStyle.Render("error: " + msg.Content))
			b.WriteString("\n")

		default:
			b.WriteString(m.renderMarkdown(msg.Content))
		}
	}

	return b.String()
}

func (m *ChatModel) renderMarkdown(content string) string {
	if m.glamourRenderer == nil {
		return content + "\n"
	}

	out, err := m.glamourRenderer.Render(content)
	if err != nil {
		return content + "\n"
	}

	return out
}

func (m *ChatModel) View() string {
	if !m.ready {
		return infoStyle.Render("loading...")
	}

	var b strings.Builder

	header := titleStyle.Render("TODO AI")
	help := helpStyle.Render("[enter: send] [ctrl+l: clear] [pgup/pgdown: scroll] [ctrl+c: exit]")
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(header)-lipgloss.Width(help)))

	b.WriteString(header + gap + help)
	b.WriteString("\n\n")

	chatPane := paneStyle.
		Width(m.viewport.Width + 2).
		Height(m.viewport.Height).
		Render(m.viewport.View())

	listPane := paneStyle.
		Width(m.listWidth).
		Height(m.viewport.Height).
		Render(renderTodoList(m.state))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chatPane, listPane))
	b.WriteString("\n")

	b.WriteString(inputBoxStyle.Width(max(m.width-2, 10)).Render(m.input.View()))
	b.WriteString("\n")

	if m.isFetching {
		b.WriteString(m.spinner.View() + infoStyle.Render(" updating your list..."))
	} else {
		b.WriteString(infoStyle.Render("session " + m.sessionID))
	}

	return b.String()
}
