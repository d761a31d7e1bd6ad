// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/keywarden/keywarden/internal/model"
	"github.com/keywarden/keywarden/internal/settings"
)

// preferencesModel holds the state for the preferences view. Every change
// is written through to the store immediately; there is no separate save.
type preferencesModel struct {
	cursor   int // 0=provider, 1=voice notes, 2=diagnostics
	provider string
	retain   bool
	share    bool
	status   string
	err      error
}

// newPreferencesModel loads the current preference values from the store.
func newPreferencesModel() preferencesModel {
	m := preferencesModel{}
	var err error
	if m.provider, err = settings.Provider(); err != nil {
		m.err = err
		return m
	}
	if m.retain, err = settings.RetainVoiceNotes(); err != nil {
		m.err = err
		return m
	}
	if m.share, err = settings.ShareDiagnostics(); err != nil {
		m.err = err
	}
	return m
}

// cycleProvider moves the provider preference through the known list and
// persists the new value.
func (m *preferencesModel) cycleProvider(delta int) {
	idx := 0
	for i, p := range model.KnownProviders {
		if p == m.provider {
			idx = i
			break
		}
	}
	next := model.KnownProviders[(idx+delta+len(model.KnownProviders))%len(model.KnownProviders)]
	if err := settings.SetProvider(next); err != nil {
		m.err = err
		return
	}
	m.provider = next
	m.err = nil
	m.status = fmt.Sprintf("provider set to %s", next)
}

// toggleCurrent flips the toggle under the cursor and persists it.
func (m *preferencesModel) toggleCurrent() {
	switch m.cursor {
	case 1:
		if err := settings.SetRetainVoiceNotes(!m.retain); err != nil {
			m.err = err
			return
		}
		m.retain = !m.retain
		m.err = nil
		m.status = fmt.Sprintf("voice note retention %s", onOffWord(m.retain))
	case 2:
		if err := settings.SetShareDiagnostics(!m.share); err != nil {
			m.err = err
			return
		}
		m.share = !m.share
		m.err = nil
		m.status = fmt.Sprintf("diagnostics sharing %s", onOffWord(m.share))
	}
}

// onOffWord is the unstyled form for status messages.
func onOffWord(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

func (m preferencesModel) Init() tea.Cmd {
	return nil
}

func (m preferencesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "q", "esc":
			return m, func() tea.Msg { return backToMenuMsg{} }
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < 2 {
				m.cursor++
			}
		case "left", "h":
			if m.cursor == 0 {
				m.cycleProvider(-1)
			} else {
				m.toggleCurrent()
			}
		case "right", "l":
			if m.cursor == 0 {
				m.cycleProvider(1)
			} else {
				m.toggleCurrent()
			}
		case "enter", " ":
			if m.cursor == 0 {
				m.cycleProvider(1)
			} else {
				m.toggleCurrent()
			}
		}
	}
	return m, nil
}

func (m preferencesModel) View() string {
	title := mainTitleStyle.Render("⚙️ Preferences")

	rows := []struct {
		label string
		value string
	}{
		{"Provider", m.provider},
		{"Retain voice notes", onOff(m.retain)},
		{"Share diagnostics", onOff(m.share)},
	}

	var listItems []string
	for i, row := range rows {
		prefix, labelStyle := "  ", itemStyle
		if m.cursor == i {
			prefix, labelStyle = "▸ ", selectedItemStyle
		}
		// Style the label only; the values carry their own styling.
		label := labelStyle.Render(fmt.Sprintf("%s%-20s", prefix, row.label))
		listItems = append(listItems, lipgloss.JoinHorizontal(lipgloss.Left, label, " ", row.value))
	}

	paneStyle := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSubtle).Padding(1, 2)
	listPane := paneStyle.Width(60).Render(lipgloss.JoinVertical(lipgloss.Left, listItems...))

	var statusLine string
	if m.err != nil {
		statusLine = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	} else if m.status != "" {
		statusLine = statusMessageStyle.Render(m.status)
	}

	helpLine := footerStyle.Render(AlignFooter("↑/↓: select • ←/→/enter: change • esc: back", "", 60))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", listPane, "", statusLine, helpLine)
}
