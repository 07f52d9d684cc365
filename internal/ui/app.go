package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/crown/internal/crown"
	"github.com/five82/crown/internal/journal"
	"github.com/five82/crown/internal/logtail"
	"github.com/five82/crown/internal/prefs"
	"github.com/five82/crown/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewCrown View = iota
	ViewEvents
	ViewLogs
)

var viewNames = map[View]string{
	ViewCrown:  "crown",
	ViewEvents: "events",
	ViewLogs:   "logs",
}

func viewFromName(name string) View {
	for v, n := range viewNames {
		if n == name {
			return v
		}
	}
	return ViewCrown
}

// Controller is the part of the sync controller the UI drives.
type Controller interface {
	Snapshot() state.Snapshot
	Claim(ctx context.Context, message string) (crown.SubmissionHandle, error)
	Tick(ctx context.Context)
}

// EventLister lists journal entries, newest first.
type EventLister interface {
	Recent(ctx context.Context, limit int) ([]journal.Event, error)
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller Controller
	Session    crown.Session
	Events     EventLister // optional
	LogPath    string
	Contract   string
	Network    string
	ThemeName  string
	View       string
	PrefsPath  string
	RedrawTick time.Duration // how often the UI re-reads the controller snapshot
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	controller Controller
	session    crown.Session
	events     EventLister
	logPath    string
	contract   string
	network    string
	prefsPath  string
	redrawTick time.Duration
	keys       keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Data state
	snapshot state.Snapshot
	account  string

	// Claim state
	input      textinput.Model
	editing    bool
	confirming bool
	submitting bool
	spinner    spinner.Model
	flash      string
	flashErr   bool

	// Events state
	eventList      []journal.Event
	eventsErr      error
	eventsViewport viewport.Model

	// Log state
	logLines    []logtail.Line
	logFollow   bool
	logViewport viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	redraw := opts.RedrawTick
	if redraw <= 0 {
		redraw = time.Second
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	ti := textinput.New()
	ti.Placeholder = "Message for your reign"
	ti.CharLimit = crown.MaxMessageLength
	ti.Prompt = "> "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:         ctx,
		controller:  opts.Controller,
		session:     opts.Session,
		events:      opts.Events,
		logPath:     opts.LogPath,
		contract:    opts.Contract,
		network:     opts.Network,
		prefsPath:   prefsPath,
		redrawTick:  redraw,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		currentView: viewFromName(opts.View),
		input:       ti,
		spinner:     sp,
		logFollow:   true,
	}
	if m.session != nil {
		m.account = m.session.CurrentAccount()
	}
	if m.controller != nil {
		m.snapshot = m.controller.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.redrawTick)}
	if m.controller != nil {
		cmds = append(cmds, snapshotCmd(m.controller, m.session))
	}
	cmds = append(cmds, m.loadViewCmd())
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.eventsViewport = viewport.New(0, 0)
			m.logViewport = viewport.New(0, 0)
		}
		m.ready = true
		m.input.Width = maxInt(m.width-12, 10)
		m.updateEventsViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.account = msg.account
		return m, nil

	case claimResultMsg:
		return m.handleClaimResult(msg)

	case sessionMsg:
		m.account = msg.account
		if msg.err != nil {
			m.setFlash(sessionErrorText(msg.err), true)
		} else if msg.signedIn {
			m.setFlash("Connected "+crown.TruncateAddress(msg.account), false)
		} else {
			m.setFlash("Wallet disconnected", false)
		}
		return m, nil

	case eventsMsg:
		m.eventList = msg.events
		m.eventsErr = msg.err
		m.updateEventsViewport()
		return m, nil

	case logsMsg:
		if msg.err == nil {
			m.logLines = msg.lines
			m.updateLogViewport()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input. Modal states (help, confirmation,
// message editing) take the key before the global bindings.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.confirming {
		return m.handleConfirmKey(msg)
	}
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView((m.currentView + 1) % 3)

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView((m.currentView + 2) % 3)

	case key.Matches(msg, m.keys.ViewCrown):
		return m.switchView(ViewCrown)

	case key.Matches(msg, m.keys.ViewEvents):
		return m.switchView(ViewEvents)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.Connect):
		if m.session == nil {
			return m, nil
		}
		m.setFlash("Waiting for wallet approval...", false)
		return m, signInCmd(m.ctx, m.session)

	case key.Matches(msg, m.keys.Disconnect):
		if m.session == nil || !m.session.IsSignedIn() {
			return m, nil
		}
		return m, signOutCmd(m.ctx, m.session)

	case key.Matches(msg, m.keys.Refresh):
		if m.controller == nil {
			return m, nil
		}
		return m, refreshCmd(m.ctx, m.controller, m.session)
	}

	switch m.currentView {
	case ViewCrown:
		return m.handleCrownKey(msg)
	case ViewEvents:
		m.eventsViewport = scrollViewport(m.keys, msg, m.eventsViewport)
		return m, nil
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.savePrefs()
	return m, m.loadViewCmd()
}

func scrollViewport(keys keyMap, msg tea.KeyMsg, vp viewport.Model) viewport.Model {
	switch {
	case key.Matches(msg, keys.Up):
		vp.LineUp(1)
	case key.Matches(msg, keys.Down):
		vp.LineDown(1)
	case key.Matches(msg, keys.Top):
		vp.GotoTop()
	case key.Matches(msg, keys.Bottom):
		vp.GotoBottom()
	}
	return vp
}

// handleTick re-reads the controller snapshot and refreshes the visible
// panel. Polling the ledger is the poller's job, not the UI's.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.redrawTick)}
	if m.controller != nil {
		cmds = append(cmds, snapshotCmd(m.controller, m.session))
	}
	switch m.currentView {
	case ViewEvents:
		cmds = append(cmds, m.loadViewCmd())
	case ViewLogs:
		if m.logFollow {
			cmds = append(cmds, m.loadViewCmd())
		}
	}
	return m, tea.Batch(cmds...)
}

// loadViewCmd fetches whatever the current view lists.
func (m Model) loadViewCmd() tea.Cmd {
	switch m.currentView {
	case ViewEvents:
		if m.events != nil {
			return loadEventsCmd(m.ctx, m.events)
		}
	case ViewLogs:
		if m.logPath != "" {
			return loadLogsCmd(m.logPath)
		}
	}
	return nil
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, View: viewNames[m.currentView]})
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewEvents:
		return m.renderEvents()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderCrown()
	}
}

// claimErrorText turns a claim failure into the line shown to the user.
func claimErrorText(err error) string {
	switch {
	case crown.IsCancelled(err):
		return "Signing cancelled"
	case errors.Is(err, crown.ErrNotAuthenticated):
		return "Connect a wallet first (c)"
	case errors.Is(err, crown.ErrClaimInFlight):
		return "A claim is already being submitted"
	case errors.Is(err, crown.ErrStateUnknown):
		return "Crown state not loaded yet, try again shortly"
	default:
		return err.Error()
	}
}

func sessionErrorText(err error) string {
	return "Wallet: " + err.Error()
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot state.Snapshot
	account  string
}

type claimResultMsg struct {
	handle crown.SubmissionHandle
	err    error
}

type sessionMsg struct {
	account  string
	signedIn bool
	err      error
}

type eventsMsg struct {
	events []journal.Event
	err    error
}

type logsMsg struct {
	lines []logtail.Line
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func snapshotCmd(c Controller, s crown.Session) tea.Cmd {
	return func() tea.Msg {
		return readSnapshot(c, s)
	}
}

func readSnapshot(c Controller, s crown.Session) snapshotMsg {
	msg := snapshotMsg{snapshot: c.Snapshot()}
	if s != nil {
		msg.account = s.CurrentAccount()
	}
	return msg
}

func refreshCmd(ctx context.Context, c Controller, s crown.Session) tea.Cmd {
	return func() tea.Msg {
		c.Tick(ctx)
		return readSnapshot(c, s)
	}
}

func claimCmd(ctx context.Context, c Controller, message string) tea.Cmd {
	return func() tea.Msg {
		handle, err := c.Claim(ctx, message)
		return claimResultMsg{handle: handle, err: err}
	}
}

func signInCmd(ctx context.Context, s crown.Session) tea.Cmd {
	return func() tea.Msg {
		err := s.SignIn(ctx)
		return sessionMsg{account: s.CurrentAccount(), signedIn: s.IsSignedIn(), err: err}
	}
}

func signOutCmd(ctx context.Context, s crown.Session) tea.Cmd {
	return func() tea.Msg {
		err := s.SignOut(ctx)
		return sessionMsg{account: s.CurrentAccount(), signedIn: s.IsSignedIn(), err: err}
	}
}

func loadEventsCmd(ctx context.Context, events EventLister) tea.Cmd {
	return func() tea.Msg {
		list, err := events.Recent(ctx, journal.DefaultLimit)
		return eventsMsg{events: list, err: err}
	}
}

func loadLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		raw, err := logtail.Read(path, logTailLines)
		if err != nil {
			return logsMsg{err: err}
		}
		lines := make([]logtail.Line, 0, len(raw))
		for _, r := range raw {
			lines = append(lines, logtail.Parse(r))
		}
		return logsMsg{lines: lines}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
