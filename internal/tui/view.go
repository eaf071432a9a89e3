package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ginjaninja78/inventario/internal/form"
	"github.com/ginjaninja78/inventario/internal/types"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#5A56E0")).Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#888888"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A56E0")).Bold(true)
	pickStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#5A56E0"))
	suggestStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	createStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	confirmStyle  = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#FFB000")).Padding(0, 2)
	totalStyle    = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
	rowIndexStyle = lipgloss.NewStyle().Width(3)
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := " Register purchase "
	if m.form.Mode() == types.ModeSale {
		title = " Register sale "
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-3s %-30s %-14s %-10s %10s",
		"#", "Product", m.form.PriceLabel(), "Quantity", "Total")) + "\n")

	if len(m.rows) == 0 {
		b.WriteString(helpStyle.Render("  No rows. ctrl+n adds one.") + "\n")
	}

	for i, rv := range m.rows {
		index := rowIndexStyle.Render(fmt.Sprintf("%d", i+1))
		if i == m.focusRow {
			index = focusStyle.Render(rowIndexStyle.Render(">"))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			index, " ",
			rv.inputs[colName].View(), " ",
			rv.inputs[colPrice].View(), " ",
			rv.inputs[colQuantity].View(), " ",
			totalStyle.Render(rv.row.Total()),
		) + "\n")

		if i == m.focusRow {
			b.WriteString(m.renderSuggestions())
		}
	}

	out := boxStyle.Render(strings.TrimRight(b.String(), "\n"))

	if m.confirming {
		out += "\n" + confirmStyle.Render(form.ConfirmMessage+"  [y/n]")
	}

	if m.host.status != "" {
		style := infoStyle
		if m.host.isAlert && m.outcome != form.OutcomeRegistered {
			style = errorStyle
		}
		out += "\n" + style.Render(m.host.status)
	}

	out += "\n" + helpStyle.Render("tab: next field • ↑/↓: move • enter: pick • ctrl+n: add row • ctrl+d: remove row • ctrl+s: register • esc: quit")
	return out + "\n"
}

func (m Model) renderSuggestions() string {
	entries := m.suggestions()
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	for i, e := range entries {
		style := suggestStyle
		if e.CreateNew {
			style = createStyle
		}
		if i == m.pick {
			style = pickStyle
		}
		b.WriteString("      " + style.Render(e.Label) + "\n")
	}
	return b.String()
}
