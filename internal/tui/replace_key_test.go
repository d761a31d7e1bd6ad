// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/settings"
)

func TestReplaceKeyDialogGate(t *testing.T) {
	initTestDBT(t)
	if err := settings.SetCredential("sk-AAAA1111"); err != nil {
		t.Fatalf("seeding credential failed: %v", err)
	}

	m := newReplaceKeyModel()
	if m.err != nil {
		t.Fatalf("unexpected open error: %v", m.err)
	}

	m.candidate.SetValue("sk-AAAA1112")
	m.confirmation.SetValue("sk-AAAA1112")
	m.syncWorkflow()

	report := m.wf.Report()
	if !report.Gate.KeysMatch {
		t.Fatalf("expected matching entries")
	}
	if !report.Gate.SmallEditDetected || report.Distance != 1 {
		t.Fatalf("expected small edit at distance 1, got detected=%t distance=%d",
			report.Gate.SmallEditDetected, report.Distance)
	}

	// No acknowledgement yet: the gate stays closed.
	if m.wf.CanSave() {
		t.Fatalf("save must stay blocked without acknowledgement")
	}

	m.acknowledged = true
	m.syncWorkflow()
	if m.wf.CanSave() {
		t.Fatalf("small edit must stay blocked without override")
	}
	m.trySave()
	if m.saved {
		t.Fatalf("trySave must not go through while the gate is closed")
	}

	// The dialog surfaces the advisory and the override checkbox.
	view := m.View()
	if !strings.Contains(view, "only 1 edit(s) away") {
		t.Errorf("expected small-edit warning in view, got:\n%s", view)
	}
	if !strings.Contains(view, "position 10") {
		t.Errorf("expected divergence position in view, got:\n%s", view)
	}
	if !strings.Contains(view, "Replace anyway despite the similarity") {
		t.Errorf("expected override checkbox in view")
	}

	m.overridden = true
	m.trySave()
	if !m.saved {
		t.Fatalf("expected save to go through once overridden, err=%v", m.err)
	}

	key, err := settings.Credential()
	if err != nil || key != "sk-AAAA1112" {
		t.Fatalf("stored key not replaced, got %q err=%v", key, err)
	}

	entries, err := db.GetAllAuditLogEntries()
	if err != nil {
		t.Fatalf("reading audit log failed: %v", err)
	}
	if len(entries) == 0 || entries[0].Action != "REPLACE_CREDENTIAL" {
		t.Fatalf("expected a REPLACE_CREDENTIAL audit entry, got %v", entries)
	}
}

func TestReplaceKeyFirstKey(t *testing.T) {
	initTestDBT(t)

	m := newReplaceKeyModel()
	if m.err != nil {
		t.Fatalf("unexpected open error: %v", m.err)
	}

	m.candidate.SetValue("sk-FRESH0001")
	m.confirmation.SetValue("sk-FRESH0001")
	m.acknowledged = true
	m.syncWorkflow()

	// With no stored key there is no meaningful distance and no small-edit
	// hold; acknowledgement and a matching confirmation are enough.
	report := m.wf.Report()
	if report.Compared || report.Gate.SmallEditDetected {
		t.Fatalf("first key must not trigger the similarity guard")
	}

	m.trySave()
	if !m.saved {
		t.Fatalf("expected first-key save to succeed, err=%v", m.err)
	}
	if !strings.Contains(m.View(), "sk-…0001") {
		t.Errorf("expected masked key in the saved view")
	}

	key, err := settings.Credential()
	if err != nil || key != "sk-FRESH0001" {
		t.Fatalf("stored key not written, got %q err=%v", key, err)
	}
}

func TestReplaceKeyEscDiscards(t *testing.T) {
	initTestDBT(t)
	if err := settings.SetCredential("sk-KEEP9999"); err != nil {
		t.Fatalf("seeding credential failed: %v", err)
	}

	m := newReplaceKeyModel()
	m.candidate.SetValue("sk-SOMETHING")
	m.syncWorkflow()

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(*replaceKeyModel)
	if m.wf.IsOpen() {
		t.Fatalf("esc must close the workflow")
	}
	if cmd == nil {
		t.Fatalf("esc must signal the router")
	}
	if _, ok := cmd().(backToMenuMsg); !ok {
		t.Fatalf("expected backToMenuMsg from esc")
	}

	key, err := settings.Credential()
	if err != nil || key != "sk-KEEP9999" {
		t.Fatalf("cancel must not touch the stored key, got %q err=%v", key, err)
	}

	// Reopening starts from a clean slate.
	m2 := newReplaceKeyModel()
	if m2.candidate.Value() != "" || m2.acknowledged || m2.overridden {
		t.Fatalf("reopened dialog must start clean")
	}
}

func TestReplaceKeyFocusSkipsHiddenOverride(t *testing.T) {
	initTestDBT(t)
	if err := settings.SetCredential("sk-AAAA1111"); err != nil {
		t.Fatalf("seeding credential failed: %v", err)
	}

	m := newReplaceKeyModel()
	m.candidate.SetValue("sk-ZZZZ0000")
	m.confirmation.SetValue("sk-ZZZZ0000")
	m.syncWorkflow()
	if m.wf.Report().Gate.SmallEditDetected {
		t.Fatalf("distant candidate must not count as a small edit")
	}

	// Walk the focus from the confirmation field; the hidden override row
	// is skipped and the save button comes right after the acknowledgement.
	m.focusIndex = focusConfirmation
	m.moveFocus(1)
	if m.focusIndex != focusAcknowledge {
		t.Fatalf("expected focus on acknowledge, got %d", m.focusIndex)
	}
	m.moveFocus(1)
	if m.focusIndex != focusSave {
		t.Fatalf("expected focus to skip the override row, got %d", m.focusIndex)
	}
}
