package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/crown/internal/logtail"
)

// logTailLines is how much of the log file the Logs view shows.
const logTailLines = 200

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ToggleFollow) {
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	}
	before := m.logViewport.YOffset
	m.logViewport = scrollViewport(m.keys, msg, m.logViewport)
	// Scrolling up leaves follow mode.
	if m.logViewport.YOffset < before {
		m.logFollow = false
	}
	return m, nil
}

func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	m.logViewport.Width = maxInt(m.width-4, 0)
	m.logViewport.Height = maxInt(m.height-5, 0)
	m.logViewport.SetContent(m.renderLogContent())
	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	box := m.renderBox("Client Log", m.logViewport.View(), m.width, m.height-3, true)

	autoTail := "off"
	if m.logFollow {
		autoTail = "on"
	}
	status := fmt.Sprintf(" %d lines  auto-tail %s  %s", len(m.logLines), autoTail, truncateMiddle(m.logPath, 50))
	return box + "\n" + styles.FaintText.Render(status)
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if len(m.logLines) == 0 {
		return styles.MutedText.Render("No log output yet")
	}
	lines := make([]string, 0, len(m.logLines))
	for _, l := range m.logLines {
		msgStyle := styles.Text
		switch l.Level {
		case logtail.LevelError:
			msgStyle = styles.DangerText
		case logtail.LevelNotice:
			msgStyle = styles.InfoText
		}
		line := msgStyle.Render(l.Message)
		if l.Stamp != "" {
			line = styles.FaintText.Render(l.Stamp) + " " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
