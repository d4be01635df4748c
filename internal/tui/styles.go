package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Base styles — neutral terminal palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Accent / state
	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#38bdf8")).
			Bold(true)

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#38bdf8")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#38bdf8")).
			Bold(true)

	// Stock movement colors
	stockInStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	stockOutStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0944a"))

	// Low stock badge
	lowStockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171")).
			Bold(true)

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Role colors
	roleColors = map[string]lipgloss.Color{
		"admin": lipgloss.Color("#c084e0"),
		"staff": lipgloss.Color("#60a0e0"),
	}
)

// RoleStyle returns a bold style colored for the given role.
func RoleStyle(role string) lipgloss.Style {
	if c, ok := roleColors[role]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// typeStyle returns the style for a transaction type.
func typeStyle(t string) lipgloss.Style {
	if t == "stock_in" {
		return stockInStyle
	}
	return stockOutStyle
}

// stockStyle colors a stock figure by how close it is to its minimum.
func stockStyle(stock, minStock int) lipgloss.Style {
	switch {
	case stock <= minStock:
		return lowStockStyle
	case minStock > 0 && stock <= minStock*2:
		return warnStyle
	default:
		return okStyle
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// renderLogo renders the centered "ATURMATION" wordmark.
func renderLogo(width int) string {
	const text = "A T U R M A T I O N"
	logo := titleStyle.Render(text)
	pad := (width - lipgloss.Width(logo)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + logo
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

var helpItems = []helpItem{
	{"Repository", "github.com/aturmation/aturmation-cli", "https://github.com/aturmation/aturmation-cli"},
	{"Issues", "github.com/aturmation/aturmation-cli/issues", "https://github.com/aturmation/aturmation-cli/issues"},
}

// helpView renders the interactive help overlay with a cursor.
func helpView(cursor int) string {
	title := titleStyle.Render("A T U R M A T I O N")
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	linkSelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#38bdf8"))

	keys := []struct{ key, desc string }{
		{"1-5", "switch tabs"},
		{"j/k", "move cursor"},
		{"/", "search"},
		{"s", "cycle sort column"},
		{"f", "cycle filter"},
		{"[ ]", "previous / next page"},
		{"n / e / d", "new / edit / delete"},
		{"r", "refresh"},
		{"q", "quit"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)
	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-12s", k.key)), descStyle.Render(k.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-12s", item.label))
		prefix := "    "
		if i == cursor {
			label = linkSelStyle.Render(fmt.Sprintf("%-12s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, descStyle.Render(item.desc))
	}
	return b.String()
}
