// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/keywarden/keywarden/internal/model"
)

var errTest = errors.New("boom")

func TestAuditActionStyleAndRebuild(t *testing.T) {
	// Check styles render something non-empty
	s := auditActionStyle("REPLACE_CREDENTIAL")
	if s.Render("x") == "" {
		t.Fatalf("expected non-empty render from replace style")
	}
	s2 := auditActionStyle("SET_PROVIDER")
	if s2.Render("x") == "" {
		t.Fatalf("expected non-empty render from preference style")
	}

	// Test rebuildTableRows with entries
	m := &auditLogModel{
		allEntries: []model.AuditLogEntry{
			{Timestamp: "2025-01-01T00:00:00Z", Username: "alice", Action: "REPLACE_CREDENTIAL", Details: "new_key: sk-…1112"},
			{Timestamp: "2025-01-02T00:00:00Z", Username: "bob", Action: "SET_PROVIDER", Details: "provider: azure"},
		},
	}
	m.filter = ""
	m.rebuildTableRows()
	rows := m.table.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after rebuild, got %d", len(rows))
	}

	// Single-token filter
	m.filter = "provider"
	m.rebuildTableRows()
	rows = m.table.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row when filtering by provider, got %d", len(rows))
	}

	// Every token must match, tokens may hit different columns
	m.filter = "alice replace"
	m.rebuildTableRows()
	rows = m.table.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row for 'alice replace', got %d", len(rows))
	}

	// Tokens matching different entries match neither
	m.filter = "alice provider"
	m.rebuildTableRows()
	if len(m.table.Rows()) != 0 {
		t.Fatalf("expected no rows for 'alice provider', got %d", len(m.table.Rows()))
	}
}

func TestMenuViewRendersDashboard(t *testing.T) {
	m := menuModel{choices: []string{"Replace API Key", "Preferences", "View Audit Log"}}
	data := dashboardData{
		hasKey:           true,
		maskedKey:        "sk-…9876",
		provider:         "azure",
		retainVoiceNotes: true,
		recentLogs: []model.AuditLogEntry{
			{Timestamp: "2025-03-01T10:30:00Z", Username: "warden", Action: "SET_PROVIDER", Details: "provider: azure"},
		},
	}

	out := m.View(data, 120, 40, false)
	if out == "" {
		t.Fatalf("menuModel.View returned empty string")
	}
	if !strings.Contains(out, "sk-…9876") {
		t.Errorf("expected dashboard to show the masked key, got:\n%s", out)
	}
	if !strings.Contains(out, "azure") {
		t.Errorf("expected dashboard to show the provider")
	}
	if !strings.Contains(out, "SET_PROVIDER") {
		t.Errorf("expected dashboard to show recent activity")
	}

	// The copy confirmation shows up in the footer.
	out = m.View(data, 120, 40, true)
	if !strings.Contains(out, "key copied to clipboard") {
		t.Errorf("expected copy confirmation in footer")
	}
}

func TestMenuViewWithoutKey(t *testing.T) {
	m := menuModel{choices: []string{"Replace API Key", "Preferences", "View Audit Log"}}
	out := m.View(dashboardData{provider: "openai"}, 100, 30, false)
	if !strings.Contains(out, "not set") {
		t.Errorf("expected missing key marker, got:\n%s", out)
	}
	if !strings.Contains(out, "No recent activity.") {
		t.Errorf("expected empty activity placeholder")
	}
}

func TestPreferencesViewRenders(t *testing.T) {
	m := preferencesModel{provider: "anthropic", retain: true}
	out := m.View()
	if !strings.Contains(out, "anthropic") {
		t.Errorf("expected provider value in view, got:\n%s", out)
	}
	if !strings.Contains(out, "Retain voice notes") {
		t.Errorf("expected toggle labels in view")
	}

	m.err = errTest
	out = m.View()
	if !strings.Contains(out, "boom") {
		t.Errorf("expected error line in view, got:\n%s", out)
	}
}
