package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/taskhub/internal/domain"
)

// Colors defines the palette for status and priority badges.
var Colors = struct {
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color

	// Status colors
	Todo       lipgloss.Color
	InProgress lipgloss.Color
	Done       lipgloss.Color
	Blocked    lipgloss.Color

	// Priority colors
	Low    lipgloss.Color
	Medium lipgloss.Color
	High   lipgloss.Color
}{
	Muted:   lipgloss.Color("#636E72"), // Gray
	Error:   lipgloss.Color("#D63031"), // Red
	Warning: lipgloss.Color("#FDCB6E"), // Yellow

	Todo:       lipgloss.Color("#74B9FF"), // Light blue
	InProgress: lipgloss.Color("#FDCB6E"), // Yellow
	Done:       lipgloss.Color("#00B894"), // Green
	Blocked:    lipgloss.Color("#D63031"), // Red

	Low:    lipgloss.Color("#636E72"), // Gray
	Medium: lipgloss.Color("#A29BFE"), // Lavender
	High:   lipgloss.Color("#E17055"), // Orange
}

// StatusStyle returns the style for a status.
func StatusStyle(s domain.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch s {
	case domain.StatusTodo:
		return base.Foreground(Colors.Todo)
	case domain.StatusInProgress:
		return base.Foreground(Colors.InProgress)
	case domain.StatusDone:
		return base.Foreground(Colors.Done)
	case domain.StatusBlocked:
		return base.Foreground(Colors.Blocked)
	default:
		return base.Foreground(Colors.Muted)
	}
}

// PriorityStyle returns the style for a priority.
func PriorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityHigh:
		return lipgloss.NewStyle().Bold(true).Foreground(Colors.High)
	case domain.PriorityMedium:
		return lipgloss.NewStyle().Foreground(Colors.Medium)
	default:
		return lipgloss.NewStyle().Foreground(Colors.Low)
	}
}

// warningStyle highlights cautions such as a dependency cycle.
var warningStyle = lipgloss.NewStyle().Bold(true).Foreground(Colors.Warning)

func statusBadge(s domain.Status) string {
	return StatusStyle(s).Render(string(s))
}

func priorityBadge(p domain.Priority) string {
	return PriorityStyle(p).Render(string(p))
}
