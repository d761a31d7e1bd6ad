// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

// This file contains the guided dialog for replacing the stored API key.
// The dialog collects the new key twice, the explicit acknowledgement and,
// when the candidate is suspiciously close to the stored key, the small-edit
// override. Saving stays disabled until the replacement gate opens.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/keywarden/keywarden/internal/mask"
	"github.com/keywarden/keywarden/internal/replace"
	"github.com/keywarden/keywarden/internal/settings"
)

// backToMenuMsg is a message to signal that the active view should close
// and the UI should return to the main menu.
type backToMenuMsg struct{}

// Focus positions within the replacement dialog, top to bottom.
const (
	focusCandidate = iota
	focusConfirmation
	focusAcknowledge
	focusOverride
	focusSave
	focusCount
)

var focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

// replaceKeyModel holds the state for the key replacement dialog. The
// transient inputs live in the workflow; the model mirrors them for
// rendering and pushes every change back in.
type replaceKeyModel struct {
	wf           *replace.Workflow
	candidate    textinput.Model
	confirmation textinput.Model
	acknowledged bool
	overridden   bool
	focusIndex   int
	saved        bool
	savedMasked  string
	err          error
	width        int
	height       int
}

// newReplaceKeyModel opens a fresh replacement attempt against the stored key.
func newReplaceKeyModel() *replaceKeyModel {
	newInput := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
		ti.CharLimit = 512
		ti.Width = 48
		ti.Prompt = "> "
		ti.TextStyle = focusedStyle
		ti.Cursor.Style = focusedStyle
		return ti
	}

	m := &replaceKeyModel{
		wf:           replace.New(settings.CredentialStore{}),
		candidate:    newInput("new API key"),
		confirmation: newInput("repeat new API key"),
	}
	m.candidate.Focus()
	if err := m.wf.Open(); err != nil {
		m.err = err
	}
	return m
}

// Init starts the cursor blinking in the first input.
func (m *replaceKeyModel) Init() tea.Cmd {
	return textinput.Blink
}

// syncWorkflow pushes the dialog's inputs into the workflow so the gate
// state reflects what is on screen.
func (m *replaceKeyModel) syncWorkflow() {
	m.wf.SetCandidate(m.candidate.Value())
	m.wf.SetConfirmation(m.confirmation.Value())
	m.wf.SetAcknowledged(m.acknowledged)
	m.wf.SetOverridden(m.overridden)
}

// moveFocus shifts focus by delta, skipping the override row while no
// small edit is detected.
func (m *replaceKeyModel) moveFocus(delta int) tea.Cmd {
	smallEdit := m.wf.Report().Gate.SmallEditDetected
	for {
		m.focusIndex = (m.focusIndex + delta + focusCount) % focusCount
		if m.focusIndex == focusOverride && !smallEdit {
			continue
		}
		break
	}

	m.candidate.Blur()
	m.confirmation.Blur()
	switch m.focusIndex {
	case focusCandidate:
		return m.candidate.Focus()
	case focusConfirmation:
		return m.confirmation.Focus()
	}
	return nil
}

// trySave attempts the replacement. A closed gate is not an error; the
// button simply stays disabled and nothing happens.
func (m *replaceKeyModel) trySave() {
	m.syncWorkflow()
	if !m.wf.CanSave() {
		return
	}
	masked := mask.Mask(m.candidate.Value(), 0)
	if err := m.wf.Save(); err != nil {
		m.err = err
		return
	}
	m.saved = true
	m.savedMasked = masked
	m.err = nil
	m.candidate.SetValue("")
	m.confirmation.SetValue("")
}

// Update handles messages and updates the dialog state.
func (m *replaceKeyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.saved {
			// The save went through; any key returns to the menu.
			return m, func() tea.Msg { return backToMenuMsg{} }
		}

		switch msg.String() {
		case "esc":
			// Cancel discards every transient input. Reopening the
			// dialog always starts from a clean slate.
			m.wf.Close()
			return m, func() tea.Msg { return backToMenuMsg{} }

		case "tab", "down":
			return m, m.moveFocus(1)

		case "shift+tab", "up":
			return m, m.moveFocus(-1)

		case "enter":
			switch m.focusIndex {
			case focusAcknowledge:
				m.acknowledged = !m.acknowledged
				m.syncWorkflow()
				return m, nil
			case focusOverride:
				m.overridden = !m.overridden
				m.syncWorkflow()
				return m, nil
			case focusSave:
				m.trySave()
				return m, nil
			default:
				// Enter in a text input moves on to the next field.
				return m, m.moveFocus(1)
			}

		case " ":
			switch m.focusIndex {
			case focusAcknowledge:
				m.acknowledged = !m.acknowledged
				m.syncWorkflow()
				return m, nil
			case focusOverride:
				m.overridden = !m.overridden
				m.syncWorkflow()
				return m, nil
			}
		}
	}

	// Route everything else to the focused text input.
	switch m.focusIndex {
	case focusCandidate:
		m.candidate, cmd = m.candidate.Update(msg)
	case focusConfirmation:
		m.confirmation, cmd = m.confirmation.Update(msg)
	}
	m.syncWorkflow()
	return m, cmd
}

// checkbox renders a single checkbox row with focus styling.
func checkbox(label string, checked, focused bool) string {
	box := "[ ] " + label
	if checked {
		box = "[x] " + label
	}
	if focused {
		return formSelectedItemStyle.Render(box)
	}
	return formItemStyle.Render(box)
}

// View renders the replacement dialog.
func (m *replaceKeyModel) View() string {
	if m.saved {
		var b strings.Builder
		b.WriteString(titleStyle.Render("🔑 Replace API Key"))
		b.WriteString("\n")
		b.WriteString(successStyle.Render(fmt.Sprintf("API key replaced. The store now holds %s.", m.savedMasked)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("(press any key to return to the menu)"))
		return b.String()
	}

	if m.err != nil && !m.wf.IsOpen() {
		// Opening the workflow failed; there is nothing to edit.
		var b strings.Builder
		b.WriteString(titleStyle.Render("🔑 Replace API Key"))
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error loading the stored key: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("(press esc to return to the menu)"))
		return b.String()
	}

	report := m.wf.Report()

	var b strings.Builder
	b.WriteString(titleStyle.Render("🔑 Replace API Key"))
	b.WriteString("\n\n")

	current := helpStyle.Render("none stored yet")
	if m.wf.Current() != "" {
		current = mask.Mask(m.wf.Current(), 0)
	}
	b.WriteString("Current key: " + current)
	b.WriteString("\n\n")

	b.WriteString(m.candidate.View())
	b.WriteString("\n")
	b.WriteString(m.confirmation.View())
	b.WriteString("\n\n")

	// Advisory lines. These never gate anything themselves; the gate
	// state decides, the advisories explain it.
	if m.candidate.Value() != "" && m.confirmation.Value() != "" {
		if report.Gate.KeysMatch {
			b.WriteString(successStyle.Render("Entries match."))
		} else {
			b.WriteString(errorStyle.Render("The two entries do not match."))
		}
		b.WriteString("\n")
	}
	if report.Compared && report.Gate.SmallEditDetected {
		b.WriteString(specialStyle.Render(fmt.Sprintf("Warning: only %d edit(s) away from the current key.", report.Distance)))
		b.WriteString("\n")
		if report.Diverged {
			d := report.Divergence
			b.WriteString(helpStyle.Render(fmt.Sprintf("First difference at position %d: %q vs %q", d.Index, d.LeftContext, d.RightContext)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(checkbox("I understand this will replace the stored key", m.acknowledged, m.focusIndex == focusAcknowledge))
	b.WriteString("\n")
	if report.Gate.SmallEditDetected {
		b.WriteString(checkbox("Replace anyway despite the similarity", m.overridden, m.focusIndex == focusOverride))
		b.WriteString("\n")
	}

	var saveButton string
	switch {
	case !m.wf.CanSave():
		saveButton = disabledButtonStyle.Render("Save")
	case m.focusIndex == focusSave:
		saveButton = activeButtonStyle.Render("Save")
	default:
		saveButton = buttonStyle.Render("Save")
	}
	b.WriteString(saveButton)

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	b.WriteString("\n" + helpStyle.Render("(tab: next field • enter/space: toggle • esc: cancel)"))

	return lipgloss.Place(m.width, m.height,
		lipgloss.Left, lipgloss.Center,
		dialogBoxStyle.Render(b.String()),
	)
}
