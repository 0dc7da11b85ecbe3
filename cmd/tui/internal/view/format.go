package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// apiTimeout bounds one backend round trip; the HTTP client carries its own,
// shorter timeout.
const apiTimeout = 30 * time.Second

// APICtx returns a context with a standard timeout for backend calls.
func APICtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), apiTimeout)
}

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
	panelStyle = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func statusLine(msg string, isErr bool) string {
	if msg == "" {
		return ""
	}

	if isErr {
		return errorStyle.Render(msg)
	}

	return okStyle.Render(msg)
}
