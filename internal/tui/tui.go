// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal user interface for Keywarden.
// This file, tui.go, is the main entry point for the TUI, containing the
// top-level model that acts as a router to all other sub-views.
package tui // import "github.com/keywarden/keywarden/internal/tui"

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/keywarden/keywarden/internal/logging"
	"github.com/keywarden/keywarden/internal/model"
	"github.com/keywarden/keywarden/internal/settings"
	"github.com/keywarden/keywarden/util/slicest"
)

// viewState represents which part of the UI is currently active.
type viewState int

const (
	// menuView is the main dashboard and navigation menu.
	menuView viewState = iota
	replaceKeyView
	preferencesView
	auditLogView
)

// dashboardDataMsg is a message containing the data for the main menu dashboard.
type dashboardDataMsg struct {
	data dashboardData
}

// dashboardData holds the summary information for the main menu view.
type dashboardData struct {
	hasKey           bool
	maskedKey        string
	provider         string
	retainVoiceNotes bool
	shareDiagnostics bool
	recentLogs       []model.AuditLogEntry
	err              error
}

// mainModel is the top-level model for the TUI. It acts as a state machine
// and router, delegating updates and view rendering to the currently active sub-model.
type mainModel struct {
	state     viewState
	menu      menuModel
	replacer  *replaceKeyModel
	prefs     preferencesModel
	auditLog  auditLogModel
	dashboard dashboardData
	width     int
	height    int
	keyCopied bool
	err       error
}

// menuModel holds the state for the main menu.
type menuModel struct {
	choices []string // The menu items to show.
	cursor  int      // Which menu item our cursor is pointing at.
}

// initialModel creates the starting state of the TUI, beginning at the main menu.
func initialModel() mainModel {
	return mainModel{
		state: menuView,
		menu: menuModel{
			choices: []string{
				"Replace API Key",
				"Preferences",
				"View Audit Log",
			},
		},
	}
}

// Init is the first function that will be called by the Bubble Tea runtime.
// It kicks off the initial command to load data for the dashboard.
func (m mainModel) Init() tea.Cmd {
	return refreshDashboardCmd()
}

// Update is the main message loop. It handles all events (like key presses and
// window size changes) and delegates them to the active sub-model.
func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings that work everywhere.
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case dashboardDataMsg:
		m.dashboard = msg.data
		m.keyCopied = false
		if msg.data.err != nil {
			m.err = msg.data.err
		}
		return m, nil
	}

	// Delegate updates to the currently active view.
	switch m.state {
	case replaceKeyView:
		// If we received a "back" message, switch the state.
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			return m, refreshDashboardCmd()
		}
		var newReplacerModel tea.Model
		newReplacerModel, cmd = m.replacer.Update(msg)
		m.replacer = newReplacerModel.(*replaceKeyModel)

	case preferencesView:
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			return m, refreshDashboardCmd()
		}
		var newPrefsModel tea.Model
		newPrefsModel, cmd = m.prefs.Update(msg)
		m.prefs = newPrefsModel.(preferencesModel)

	case auditLogView:
		if _, ok := msg.(backToMenuMsg); ok {
			m.state = menuView
			return m, refreshDashboardCmd()
		}
		var newAuditLogModel tea.Model
		newAuditLogModel, cmd = m.auditLog.Update(msg)
		m.auditLog = newAuditLogModel.(auditLogModel)

	default: // menuView
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "q":
				return m, tea.Quit
			case "up", "k":
				if m.menu.cursor > 0 {
					m.menu.cursor--
				}
			case "down", "j":
				if m.menu.cursor < len(m.menu.choices)-1 {
					m.menu.cursor++
				}
			case "c":
				// Copy the stored key to the clipboard. The dashboard only
				// ever shows the masked form; the raw key goes straight to
				// the clipboard without being rendered.
				if key, err := settings.Credential(); err == nil && key != "" {
					if err := clipboard.WriteAll(key); err == nil {
						m.keyCopied = true
					}
				}
				return m, nil
			case "enter":
				switch m.menu.cursor {
				case 0: // Replace API Key
					m.state = replaceKeyView
					m.replacer = newReplaceKeyModel()
					// Manually update the new sub-model with the current window size
					// so the dialog is placed correctly before the next resize.
					var updatedModel tea.Model
					updatedModel, cmd = m.replacer.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
					m.replacer = updatedModel.(*replaceKeyModel)
					return m, tea.Batch(m.replacer.Init(), cmd)
				case 1: // Preferences
					m.state = preferencesView
					m.prefs = newPreferencesModel()
					return m, nil
				case 2: // View Audit Log
					m.state = auditLogView
					m.auditLog = newAuditLogModel()
					var updatedModel tea.Model
					updatedModel, cmd = m.auditLog.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
					m.auditLog = updatedModel.(auditLogModel)
					return m, cmd
				}
			}
		}
	}

	return m, cmd
}

// View renders the TUI. It's called after every Update and delegates rendering
// to the currently active sub-model.
func (m mainModel) View() string {
	if m.err != nil {
		return errorStyle.Padding(1, 2).Render(fmt.Sprintf("An error occurred: %v", m.err))
	}

	// Delegate rendering to the currently active view.
	switch m.state {
	case replaceKeyView:
		return m.replacer.View()
	case preferencesView:
		return m.prefs.View()
	case auditLogView:
		return m.auditLog.View()
	default: // menuView
		return m.menu.View(m.dashboard, m.width, m.height, m.keyCopied)
	}
}

// formatLabelPadding pads a label to labelWidth columns before its value so a
// block of label/value pairs lines up.
func formatLabelPadding(label, value string, labelWidth int) string {
	if labelWidth <= 0 || len(label) >= labelWidth {
		return label + " " + value
	}
	return label + strings.Repeat(" ", labelWidth-len(label)) + " " + value
}

// onOff renders a preference toggle value for the dashboard.
func onOff(v bool) string {
	if v {
		return successStyle.Render("on")
	}
	return helpStyle.Render("off")
}

// View renders the main menu and dashboard.
func (m menuModel) View(data dashboardData, width, height int, keyCopied bool) string {
	title := mainTitleStyle.Render("🔐 Keywarden")
	subTitle := helpStyle.Render("Credential and preference store for your assistant")
	header := lipgloss.JoinVertical(lipgloss.Left, title, subTitle)

	// --- Panes ---
	paneTitleStyle := lipgloss.NewStyle().Bold(true)

	// Menu List (Left Pane)
	var menuItems []string
	menuItems = append(menuItems, paneTitleStyle.Render("Navigation"), "")
	menuItems = append(menuItems, slicest.MapI(m.choices, func(i int, choice string) string {
		if m.cursor == i {
			return selectedItemStyle.Render("▸ " + choice)
		}
		return itemStyle.Render("  " + choice)
	})...)
	menuContent := lipgloss.JoinVertical(lipgloss.Left, menuItems...)

	// Dashboard (Right Pane)
	var dashboardItems []string
	dashboardItems = append(dashboardItems, paneTitleStyle.Render("Store Status"), "")

	keyStatus := errorStyle.Render("not set")
	if data.hasKey {
		keyStatus = successStyle.Render(data.maskedKey)
	}

	// Define labels and values separately to calculate padding.
	type statusItem struct {
		label string
		value string
	}
	statusItems := []statusItem{
		{"API key:", keyStatus},
		{"Provider:", data.provider},
		{"Voice notes:", onOff(data.retainVoiceNotes)},
		{"Diagnostics:", onOff(data.shareDiagnostics)},
	}

	maxLabelLen := slicest.Reduce(statusItems, func(item statusItem, widest int) int {
		if len(item.label) > widest {
			return len(item.label)
		}
		return widest
	})
	dashboardItems = append(dashboardItems, slicest.Map(statusItems, func(item statusItem) string {
		return formatLabelPadding(item.label, item.value, maxLabelLen)
	})...)

	// Recent Activity
	dashboardItems = append(dashboardItems, "", "", paneTitleStyle.Render("Recent Activity"), "")

	// --- Layout ---
	paneStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2)

	// Calculate height for the panes to fill the screen.
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footerStyle.Render(""))
	paneHeight := height - headerHeight - footerHeight - 2 // -2 for newlines around mainArea

	menuWidth := 38
	dashboardWidth := width - 4 - menuWidth - 2

	if len(data.recentLogs) == 0 {
		dashboardItems = append(dashboardItems, helpStyle.Render("No recent activity."))
	} else {
		for _, log := range data.recentLogs {
			ts := log.Timestamp
			if len(ts) >= 16 {
				ts = ts[5:16] // Format as MM-DD HH:MM
			}

			// Calculate available space inside the pane for the log line content.
			innerDashboardWidth := dashboardWidth - 4 - 2
			availableWidth := innerDashboardWidth - len(ts) - 1

			styledAction := auditActionStyle(log.Action).Render(log.Action)

			// Truncate the details to whatever room the action leaves.
			detailsWidth := availableWidth - len(log.Action) - 1
			if detailsWidth < 10 {
				detailsWidth = 10
			}
			details := log.Details
			if len(details) > detailsWidth {
				details = details[:detailsWidth-3] + "..."
			}

			logLine := lipgloss.JoinHorizontal(lipgloss.Left,
				helpStyle.Render(ts), " ", styledAction, " ", helpStyle.Render(details))
			dashboardItems = append(dashboardItems, logLine)
		}
	}
	dashboardContent := lipgloss.JoinVertical(lipgloss.Left, dashboardItems...)

	leftPane := paneStyle.Width(menuWidth).Height(paneHeight).Render(menuContent)
	rightPane := paneStyle.Width(dashboardWidth).Height(paneHeight).MarginLeft(2).Render(dashboardContent)

	mainArea := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)

	left := "↑/↓: navigate • enter: select • c: copy key • q: quit"
	right := ""
	if keyCopied {
		right = "key copied to clipboard"
	}
	footer := footerStyle.Render(AlignFooter(left, right, width))

	return lipgloss.JoinVertical(lipgloss.Top, header, mainArea, footer)
}

// Run is the main entrypoint for the TUI. It initializes and runs the Bubble Tea program.
func Run() {
	if _, err := tea.NewProgram(initialModel()).Run(); err != nil {
		logging.Errorf("TUI run error: %v", err)
		os.Exit(1)
	}
}

// refreshDashboardCmd is a tea.Cmd that fetches summary data for the main menu.
func refreshDashboardCmd() tea.Cmd {
	return func() tea.Msg {
		sd, err := settings.BuildDashboardData()
		if err != nil {
			return dashboardDataMsg{data: dashboardData{err: err}}
		}
		return dashboardDataMsg{data: dashboardData{
			hasKey:           sd.HasKey,
			maskedKey:        sd.MaskedKey,
			provider:         sd.Provider,
			retainVoiceNotes: sd.RetainVoiceNotes,
			shareDiagnostics: sd.ShareDiagnostics,
			recentLogs:       sd.RecentLogs,
		}}
	}
}
