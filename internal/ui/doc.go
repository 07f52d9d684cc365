// Package ui is the Bubble Tea terminal interface for the crown client.
//
// The model never talks to the ledger itself. A redraw tick re-reads the
// sync controller's snapshot, and claims, wallet sign-in and manual
// refreshes run as commands that report back through messages:
//
//   - app.go: Model, Update/View, messages and commands
//   - crown_view.go: crown card, claim input and confirmation prompt
//   - events.go: journal of observed reigns and claim attempts
//   - logs.go: tail of the client log file
//   - header.go: status bar and command bar
//   - theme.go, style_helpers.go: palettes and rendering helpers
//
// Three views are available: Crown (1), Events (2) and Logs (3). The theme
// and last view persist through the prefs package.
package ui
