package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/crown/internal/crown"
	"github.com/five82/crown/internal/state"
)

const currencySymbol = "STX"

// handleCrownKey processes keyboard input for the crown view.
func (m Model) handleCrownKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.EditMessage):
		if m.submitting {
			return m, nil
		}
		m.editing = true
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Confirm):
		return m.openConfirm()
	}
	return m, nil
}

// handleEditKey routes keys to the message input while it has focus.
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	case "enter":
		return m.openConfirm()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// openConfirm validates the draft and asks the user to confirm the price.
func (m Model) openConfirm() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	if _, err := crown.ValidateMessage(m.input.Value()); err != nil {
		m.setFlash(claimErrorText(err), true)
		return m, nil
	}
	m.editing = false
	m.input.Blur()
	m.confirming = true
	m.flash = ""
	return m, nil
}

// handleConfirmKey answers the confirmation prompt.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Accept):
		m.confirming = false
		if m.controller == nil {
			return m, nil
		}
		m.submitting = true
		m.setFlash("Waiting for wallet signature...", false)
		return m, tea.Batch(m.spinner.Tick, claimCmd(m.ctx, m.controller, m.input.Value()))
	case key.Matches(msg, m.keys.Cancel):
		m.confirming = false
		m.setFlash("Claim not sent", false)
	}
	return m, nil
}

// handleClaimResult reacts to the end of a submission. The controller has
// already refreshed the mirror by the time a successful result arrives.
func (m Model) handleClaimResult(msg claimResultMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	var cmds []tea.Cmd
	if m.controller != nil {
		cmds = append(cmds, snapshotCmd(m.controller, m.session))
	}
	if m.events != nil {
		cmds = append(cmds, loadEventsCmd(m.ctx, m.events))
	}
	if msg.err != nil {
		m.setFlash(claimErrorText(msg.err), true)
		return m, tea.Batch(cmds...)
	}
	m.input.SetValue("")
	m.setFlash("Transaction broadcasted: "+truncateMiddle(msg.handle.TxID, 24), false)
	return m, tea.Batch(cmds...)
}

// renderCrown renders the crown card above the claim panel.
func (m Model) renderCrown() string {
	contentHeight := m.height - 2
	cardHeight := 8
	claimHeight := maxInt(contentHeight-cardHeight-1, 3)

	card := m.renderBox("Crown", m.crownCardContent(), m.width, cardHeight, false)
	claim := m.renderBox("Claim", m.claimContent(), m.width, claimHeight, m.editing || m.confirming)
	return card + "\n" + claim + "\n" + m.renderFlash()
}

func (m Model) crownCardContent() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	if !snap.Known {
		if snap.LastError != nil {
			return styles.DangerText.Render("Crown state unavailable") + "\n" +
				styles.MutedText.Render(truncate(snap.LastError.Error(), maxInt(m.width-8, 10))) + "\n" +
				styles.FaintText.Render("Retrying on the next poll")
		}
		return styles.WarningText.Render("Loading crown state...")
	}

	label := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Muted)).Width(16)
	holder := styles.Text.Render(crown.TruncateAddress(snap.Mirror.Holder))
	if m.account != "" && m.account == snap.Mirror.Holder {
		holder += " " + styles.SuccessText.Render("(you)")
	}
	message := snap.Mirror.Message
	if message == "" {
		message = "-"
	}

	var b strings.Builder
	b.WriteString(styles.GoldText.Render("♛ The crown"))
	b.WriteString("\n")
	b.WriteString(label.Render("Holder") + holder + "\n")
	b.WriteString(label.Render("Price to claim") + styles.GoldText.Render(formatPrice(snap.Mirror.Price)) + "\n")
	b.WriteString(label.Render("Message") + styles.Text.Render(truncate(message, maxInt(m.width-22, 10))) + "\n")
	if snap.IsOffline() {
		b.WriteString(styles.WarningText.Render(fmt.Sprintf("Node unreachable (%d failed polls), showing last known state", snap.ConsecutiveFailures)))
	} else {
		b.WriteString(label.Render("Updated") + styles.MutedText.Render(formatTimestamp(snap.LastUpdated)))
	}
	return b.String()
}

func (m Model) claimContent() string {
	styles := m.theme.Styles()

	if m.submitting {
		return m.spinner.View() + " " + styles.AccentText.Render("Submitting claim, approve it in your wallet")
	}
	if m.confirming {
		price := "the current price"
		if m.snapshot.Known {
			price = formatPrice(m.snapshot.Mirror.Price)
		}
		msg, _ := crown.ValidateMessage(m.input.Value())
		return styles.Text.Render(fmt.Sprintf("Claim the crown for %s?", price)) + "\n" +
			styles.MutedText.Render(fmt.Sprintf("Message: %q", truncate(msg, maxInt(m.width-16, 10)))) + "\n" +
			styles.AccentText.Render("y") + styles.MutedText.Render(" sign and broadcast   ") +
			styles.AccentText.Render("n") + styles.MutedText.Render(" cancel")
	}

	count := utf8.RuneCountInString(crown.NormalizeMessage(m.input.Value()))
	counterStyle := styles.FaintText
	if count > crown.MaxMessageLength {
		counterStyle = styles.DangerText
	}
	counter := counterStyle.Render(fmt.Sprintf("%d/%d", count, crown.MaxMessageLength))

	hint := styles.MutedText.Render("press ") + styles.AccentText.Render("m") + styles.MutedText.Render(" to write a message")
	if m.editing {
		hint = styles.AccentText.Render("enter") + styles.MutedText.Render(" claim   ") +
			styles.AccentText.Render("esc") + styles.MutedText.Render(" stop editing")
	}
	if m.session != nil && !m.session.IsSignedIn() {
		hint += styles.WarningText.Render("   wallet not connected (c)")
	}
	return m.input.View() + "\n" + counter + "\n" + hint
}

func (m Model) renderFlash() string {
	if m.flash == "" {
		return ""
	}
	styles := m.theme.Styles()
	if m.flashErr {
		return " " + styles.DangerText.Render(m.flash)
	}
	return " " + styles.SuccessText.Render(m.flash)
}

func formatPrice(micro uint64) string {
	return crown.FormatPrice(micro) + " " + currencySymbol
}

// statusLabel describes the controller phase for the header.
func statusLabel(snap state.Snapshot) string {
	switch {
	case snap.Pending:
		return "CLAIMING"
	case snap.IsOffline():
		return "OFFLINE"
	case snap.Phase == state.PhaseReady:
		return "READY"
	case snap.Phase == state.PhaseLoading:
		return "LOADING"
	default:
		return "STARTING"
	}
}
