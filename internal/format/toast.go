package format

import (
	"github.com/charmbracelet/lipgloss"

	"pkt.systems/dlmgr/toast"
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	infoStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// ToastLine renders a toast as a single terminal line. Colour is applied only
// when color is true.
func ToastLine(t toast.Toast, color bool) string {
	label := "[" + string(t.Severity) + "]"
	if !color {
		return label + " " + t.Message
	}
	var style lipgloss.Style
	switch t.Severity {
	case toast.SeveritySuccess:
		style = successStyle
	case toast.SeverityError:
		style = errorStyle
	default:
		style = infoStyle
	}
	return style.Render(label) + " " + messageStyle.Render(t.Message)
}
