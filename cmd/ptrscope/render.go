package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	liveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	expiredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var columns = []struct {
	title string
	width int
}{
	{"NAME", 12},
	{"KIND", 12},
	{"ADDRESS", 16},
	{"OWNERS", 8},
	{"STATE", 8},
}

func cellText(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// renderRows formats rows as an aligned table.
func renderRows(rows []Row) string {
	if len(rows) == 0 {
		return helpStyle.Render("no handles")
	}
	var b strings.Builder
	for _, c := range columns {
		b.WriteString(headerStyle.Render(cellText(c.title, c.width)))
	}
	for _, r := range rows {
		b.WriteString("\n")
		state, style := "live", liveStyle
		if r.Expired {
			state, style = "empty", expiredStyle
			if r.Kind == kindWeak || r.Kind == kindWeakArray {
				state = "expired"
			}
		}
		values := []string{r.Name, r.Kind, r.Addr, strconv.Itoa(r.UseCount), state}
		for i, v := range values {
			b.WriteString(style.Render(cellText(v, columns[i].width)))
		}
	}
	return b.String()
}

func renderEvents(events []string) string {
	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = eventStyle.Render("• " + e)
	}
	return strings.Join(lines, "\n")
}
