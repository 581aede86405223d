package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/charmbracelet/lipgloss"
)

const dashboardTitle = "🍽️  Welcome to Food Sales Dashboard"

// renderLoading renders the loading screen.
func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.Title.Render(dashboardTitle),
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Loading sales data..."),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// renderLoadError replaces the whole dashboard with a single message.
func (m Model) renderLoadError() string {
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.StatusError.Render(common.LoadFailureMessage),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render(common.UserMessage(m.loadErr)),
		"",
		m.theme.StatusPending.Render("Press q to quit."),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.theme.RoundedBox.Render(content))
}

func (m Model) renderDashboard() string {
	sections := []string{
		m.theme.Title.Render(dashboardTitle),
		m.renderControls(),
		m.renderStatus(),
	}

	if m.shown {
		sections = append(sections, m.rows.View())
	}

	sections = append(sections, "", m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderControls() string {
	parts := make([]string, 0, len(m.controls)+1)
	for i, c := range m.controls {
		label := m.theme.Subtitle.Render(c.label() + ":")
		value := m.controlValue(c)

		style := m.theme.Normal
		if i == m.focus {
			style = m.theme.Selected
		}
		parts = append(parts, label+" "+style.Render(value))
	}

	if m.config.Mode == filter.ModeOnDemand {
		parts = append(parts, m.theme.Bold.Render("[ Search ⏎ ]"))
	}

	return strings.Join(parts, "   ")
}

func (m Model) controlValue(c control) string {
	switch c {
	case controlDate:
		return " " + m.dates[m.dateIdx].Label(filter.AllDates) + " "
	case controlCity:
		return " " + m.cities[m.cityIdx].Label(filter.AllCities) + " "
	case controlCategory:
		return " " + m.categories[m.catIdx].Label(filter.AllCategories) + " "
	case controlStart:
		return m.startInput.View()
	case controlEnd:
		return m.endInput.View()
	default:
		return ""
	}
}

// renderStatus shows the validation error, the search prompt or the row
// count, in that order of precedence.
func (m Model) renderStatus() string {
	switch {
	case m.inputErr != nil:
		return m.theme.StatusError.Render("Error: " + m.inputErr.Error())
	case m.rangeErr != nil:
		return m.theme.StatusError.Render("Error: " + common.UserMessage(m.rangeErr))
	case !m.shown:
		return m.theme.StatusPending.Render("Choose a date range and press Enter to search.")
	default:
		return m.theme.StatusInfo.Render(fmt.Sprintf("Showing %d of %d records", len(m.visible), m.data.Len()))
	}
}
