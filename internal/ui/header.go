package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/crown/internal/crown"
)

// renderHeader renders the status bar with all information.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < 100

	var parts []string
	parts = append(parts, bg.Render("crown", styles.Logo))

	network := m.network
	if network == "" {
		network = "mainnet"
	}
	parts = append(parts, bg.Render(strings.ToUpper(network), styles.InfoText))

	if m.contract != "" && !compact {
		parts = append(parts, bg.Render(truncateMiddle(m.contract, 40), styles.FaintText))
	}

	// Wallet
	if m.account != "" {
		parts = append(parts,
			bg.Render("●", styles.SuccessText)+bg.Space()+
				bg.Render(crown.TruncateAddress(m.account), styles.Text))
	} else {
		parts = append(parts, bg.Render("○ not connected", styles.MutedText))
	}

	// Sync status
	label := statusLabel(m.snapshot)
	statusStyle := styles.SuccessText
	switch label {
	case "OFFLINE":
		statusStyle = styles.DangerText
	case "CLAIMING", "LOADING", "STARTING":
		statusStyle = styles.WarningText
	}
	parts = append(parts, bg.Render(label, statusStyle))

	if ts := formatTimestamp(m.snapshot.LastUpdated); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if m.snapshot.LastError != nil && !compact {
		errText := truncate(m.snapshot.LastError.Error(), 60)
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText)+bg.Space()+
				bg.Render(errText, styles.DangerText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// formatTimestamp formats the last update time with relative indicator.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	since := time.Since(t)
	s := t.Format("15:04:05")
	switch {
	case since < time.Minute:
		s += " (now)"
	case since < time.Hour:
		s += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		s += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return s
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewEvents:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"1", "Crown"},
			{"3", "Logs"},
			{"?", "More"},
		}
	case ViewLogs:
		followLabel := "Pause"
		if !m.logFollow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"j/k", "Scroll"},
			{"1", "Crown"},
			{"2", "Events"},
			{"?", "More"},
		}
	default:
		wallet := cmd{"c", "Connect"}
		if m.account != "" {
			wallet = cmd{"x", "Disconnect"}
		}
		commands = []cmd{
			{"m", "Message"},
			{"enter", "Claim"},
			wallet,
			{"r", "Refresh"},
			{"2", "Events"},
			{"3", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}
