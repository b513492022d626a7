// Package ui provides terminal styling for tk CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tacksdev/tacks/internal/types"
)

// Ayu theme color palette
// Dark: https://terminalcolors.com/themes/ayu/dark/
// Light: https://terminalcolors.com/themes/ayu/light/
var (
	ColorDone = lipgloss.AdaptiveColor{
		Light: "#86b300", // ayu light bright green
		Dark:  "#c2d94c", // ayu dark bright green
	}
	ColorInProgress = lipgloss.AdaptiveColor{
		Light: "#f2ae49", // ayu light bright yellow
		Dark:  "#ffb454", // ayu dark bright yellow
	}
	ColorBlocked = lipgloss.AdaptiveColor{
		Light: "#f07171", // ayu light bright red
		Dark:  "#f07178", // ayu dark bright red
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99", // ayu light muted
		Dark:  "#6c7680", // ayu dark muted
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6", // ayu light bright blue
		Dark:  "#59c2ff", // ayu dark bright blue
	}
)

var (
	DoneStyle       = lipgloss.NewStyle().Foreground(ColorDone)
	InProgressStyle = lipgloss.NewStyle().Foreground(ColorInProgress)
	BlockedStyle    = lipgloss.NewStyle().Foreground(ColorBlocked)
	MutedStyle      = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle     = lipgloss.NewStyle().Foreground(ColorAccent)
)

// HeaderStyle for section headers - bold with accent color
var HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

// Status icons
const (
	IconOpen       = "○"
	IconInProgress = "◐"
	IconDone       = "✓"
	IconBlocked    = "✗"
)

// RenderStatus renders a status with its icon and color.
func RenderStatus(s types.Status) string {
	switch s {
	case types.StatusDone:
		return DoneStyle.Render(IconDone + " done")
	case types.StatusInProgress:
		return InProgressStyle.Render(IconInProgress + " in_progress")
	case types.StatusBlocked:
		return BlockedStyle.Render(IconBlocked + " blocked")
	default:
		return AccentStyle.Render(IconOpen + " open")
	}
}

// RenderPriority renders a priority number with urgency coloring.
// 0 is most urgent, 4 is backlog.
func RenderPriority(p int) string {
	label := fmt.Sprintf("P%d", p)
	switch {
	case p == 0:
		return BlockedStyle.Render(label)
	case p == 1:
		return InProgressStyle.Render(label)
	case p >= 3:
		return MutedStyle.Render(label)
	default:
		return label
	}
}

// RenderID renders a task ID in the accent color.
func RenderID(id string) string {
	return AccentStyle.Render(id)
}

// RenderTags renders a tag list in muted color, empty string for none.
func RenderTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return MutedStyle.Render("[" + strings.Join(tags, ", ") + "]")
}

// RenderMuted renders text with muted (gray) styling.
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderHeader renders a section header in uppercase with accent color.
func RenderHeader(s string) string {
	return HeaderStyle.Render(strings.ToUpper(s))
}

// ProgressBar renders an epic completion bar like [████░░░░░░] 40%.
func ProgressBar(done, total, width int) string {
	if width <= 0 {
		width = 10
	}
	filled := 0
	pct := 0
	if total > 0 {
		filled = done * width / total
		pct = done * 100 / total
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %d%%", bar, pct)
}

// TaskLine formats one task as a single list row.
func TaskLine(t *types.Task) string {
	parts := []string{
		RenderID(t.ID),
		RenderPriority(t.Priority),
		RenderStatus(t.Status),
		t.Title,
	}
	if tags := RenderTags(t.Tags); tags != "" {
		parts = append(parts, tags)
	}
	if t.Assignee != "" {
		parts = append(parts, MutedStyle.Render("@"+t.Assignee))
	}
	return strings.Join(parts, "  ")
}
