package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/crown/internal/crown"
	"github.com/five82/crown/internal/journal"
)

func (m *Model) updateEventsViewport() {
	if !m.ready {
		return
	}
	m.eventsViewport.Width = maxInt(m.width-4, 0)
	m.eventsViewport.Height = maxInt(m.height-4, 0)
	m.eventsViewport.SetContent(m.renderEventsContent())
}

// renderEvents renders the journal of reigns and claims.
func (m Model) renderEvents() string {
	title := fmt.Sprintf("Events (%d)", len(m.eventList))
	return m.renderBox(title, m.eventsViewport.View(), m.width, m.height-2, true)
}

func (m Model) renderEventsContent() string {
	styles := m.theme.Styles()
	if m.eventsErr != nil {
		return styles.DangerText.Render("Journal unavailable: " + m.eventsErr.Error())
	}
	if len(m.eventList) == 0 {
		return styles.MutedText.Render("No events recorded yet")
	}

	badge := lipgloss.NewStyle().Width(11)
	lines := make([]string, 0, len(m.eventList))
	for _, evt := range m.eventList {
		stamp := styles.FaintText.Render(evt.At.Local().Format("01-02 15:04:05"))
		lines = append(lines, stamp+" "+badge.Render(styles.EventStyle(evt).Render(eventLabel(evt)))+" "+m.eventDetail(evt))
	}
	return strings.Join(lines, "\n")
}

func eventLabel(evt journal.Event) string {
	if evt.Kind == journal.KindReign {
		return "REIGN"
	}
	return strings.ToUpper(string(evt.Status))
}

func (m Model) eventDetail(evt journal.Event) string {
	styles := m.theme.Styles()
	who := crown.TruncateAddress(evt.Holder)
	if who == "" {
		who = "?"
	}
	width := maxInt(m.width-50, 10)
	switch {
	case evt.Kind == journal.KindReign:
		return styles.Text.Render(who) + styles.MutedText.Render(" at ") +
			styles.GoldText.Render(formatPrice(evt.Price)) + " " +
			styles.MutedText.Render(fmt.Sprintf("%q", truncate(evt.Message, width)))
	case evt.Status == crown.ClaimAccepted:
		return styles.Text.Render(who) + styles.MutedText.Render(" paid up to ") +
			styles.Text.Render(formatPrice(evt.Price)) + " " +
			styles.FaintText.Render(truncateMiddle(evt.TxID, 20))
	default:
		return styles.Text.Render(who) + " " + styles.MutedText.Render(truncate(evt.Error, width))
	}
}
