package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorGreen     = lipgloss.Color("#5FD787")
	colorYellow    = lipgloss.Color("#FFD75F")
	colorRed       = lipgloss.Color("#FF5F5F")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	userStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	listHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			MarginBottom(1)

	todoOpenStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	todoDoneStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Strikethrough(true)

	todoDetailStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingLeft(4)

	todoDueStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			PaddingLeft(4)
)
