// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/settings"
)

// writeKeyFile drops a candidate key into the test directory and returns
// its path.
func writeKeyFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "newkey.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write key file: %v", err)
	}
	return path
}

func TestSetKeyScriptedReplacesKey(t *testing.T) {
	tmp := setupCmdTest(t)
	if err := settings.SetCredential("sk-AAAA1111"); err != nil {
		t.Fatalf("SetCredential failed: %v", err)
	}
	path := writeKeyFile(t, tmp, "sk-ZZZZ9999\n")

	output := executeCommand(t, "set-key", "--key-file", path, "--acknowledge")

	if !strings.Contains(output, "sk-…9999") {
		t.Fatalf("expected the masked new key in the output, got: %s", output)
	}
	if strings.Contains(output, "sk-ZZZZ9999") {
		t.Fatalf("output leaked the raw key: %s", output)
	}
	key, err := settings.Credential()
	if err != nil {
		t.Fatalf("Credential failed: %v", err)
	}
	if key != "sk-ZZZZ9999" {
		t.Fatalf("expected the store to hold the new key, got %s", key)
	}
}

func TestSetKeyScriptedRequiresAcknowledge(t *testing.T) {
	tmp := setupCmdTest(t)
	if err := settings.SetCredential("sk-AAAA1111"); err != nil {
		t.Fatalf("SetCredential failed: %v", err)
	}
	path := writeKeyFile(t, tmp, "sk-ZZZZ9999\n")

	_, err := executeCommandErr(t, "set-key", "--key-file", path)
	if err == nil {
		t.Fatalf("expected the replacement to be blocked without --acknowledge")
	}
	if !strings.Contains(err.Error(), "--acknowledge") {
		t.Fatalf("expected the error to point at --acknowledge, got: %v", err)
	}

	key, kerr := settings.Credential()
	if kerr != nil {
		t.Fatalf("Credential failed: %v", kerr)
	}
	if key != "sk-AAAA1111" {
		t.Fatalf("blocked replacement must not change the store, got %s", key)
	}
}

func TestSetKeySmallEditGate(t *testing.T) {
	tmp := setupCmdTest(t)
	if err := settings.SetCredential("sk-AAAA1111"); err != nil {
		t.Fatalf("SetCredential failed: %v", err)
	}
	// One edit away from the stored key; the gate must hold it back.
	path := writeKeyFile(t, tmp, "sk-AAAA1112\n")

	_, err := executeCommandErr(t, "set-key", "--key-file", path, "--acknowledge")
	if err == nil {
		t.Fatalf("expected the near-identical key to be blocked")
	}
	if !strings.Contains(err.Error(), "edit(s) away") {
		t.Fatalf("expected the error to name the edit distance, got: %v", err)
	}
	if !strings.Contains(err.Error(), "position 10") {
		t.Fatalf("expected the error to name the divergence position, got: %v", err)
	}
	if !strings.Contains(err.Error(), "--allow-small-edit") {
		t.Fatalf("expected the error to point at --allow-small-edit, got: %v", err)
	}
	key, kerr := settings.Credential()
	if kerr != nil {
		t.Fatalf("Credential failed: %v", kerr)
	}
	if key != "sk-AAAA1111" {
		t.Fatalf("blocked replacement must not change the store, got %s", key)
	}

	output := executeCommand(t, "set-key", "--key-file", path, "--acknowledge", "--allow-small-edit")
	if !strings.Contains(output, "sk-…1112") {
		t.Fatalf("expected the masked new key in the output, got: %s", output)
	}
	key, kerr = settings.Credential()
	if kerr != nil {
		t.Fatalf("Credential failed: %v", kerr)
	}
	if key != "sk-AAAA1112" {
		t.Fatalf("expected the override to replace the key, got %s", key)
	}

	entries, aerr := db.GetAllAuditLogEntries()
	if aerr != nil {
		t.Fatalf("GetAllAuditLogEntries failed: %v", aerr)
	}
	if len(entries) == 0 {
		t.Fatalf("expected an audit trail for the replacement")
	}
	if entries[0].Action != "REPLACE_CREDENTIAL" {
		t.Fatalf("expected the newest entry to be REPLACE_CREDENTIAL, got %s", entries[0].Action)
	}
	if !strings.Contains(entries[0].Details, "sk-…1112") {
		t.Fatalf("expected the audit entry to carry the masked key, got %s", entries[0].Details)
	}
	if strings.Contains(entries[0].Details, "sk-AAAA1112") {
		t.Fatalf("audit entry leaked the raw key: %s", entries[0].Details)
	}
}

func TestSetKeyScriptedFirstKey(t *testing.T) {
	tmp := setupCmdTest(t)
	path := writeKeyFile(t, tmp, "sk-FIRSTKEY12345\n")

	// With no stored key there is nothing to compare against, so the
	// acknowledgement alone is enough.
	output := executeCommand(t, "set-key", "--key-file", path, "--acknowledge")

	if !strings.Contains(output, "sk-…2345") {
		t.Fatalf("expected the masked new key in the output, got: %s", output)
	}
	key, err := settings.Credential()
	if err != nil {
		t.Fatalf("Credential failed: %v", err)
	}
	if key != "sk-FIRSTKEY12345" {
		t.Fatalf("expected the store to hold the first key, got %s", key)
	}
}

func TestSetKeyRejectsEmptyKeyFile(t *testing.T) {
	tmp := setupCmdTest(t)
	path := writeKeyFile(t, tmp, "   \n")

	_, err := executeCommandErr(t, "set-key", "--key-file", path, "--acknowledge")
	if err == nil {
		t.Fatalf("expected a whitespace-only key file to be rejected")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected the error to call the key empty, got: %v", err)
	}
}

func TestSetKeyInteractiveNeedsTerminal(t *testing.T) {
	setupCmdTest(t)

	// Test binaries never run on a TTY, so the interactive path has to
	// refuse and point at the scripted one.
	_, err := executeCommandErr(t, "set-key")
	if err == nil {
		t.Fatalf("expected the interactive mode to refuse a non-terminal stdin")
	}
	if !strings.Contains(err.Error(), "not a terminal") {
		t.Fatalf("expected a terminal hint, got: %v", err)
	}
	if !strings.Contains(err.Error(), "--key-file") {
		t.Fatalf("expected the error to point at --key-file, got: %v", err)
	}
}

func TestReadCandidateKey(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "key.txt")
	if err := os.WriteFile(path, []byte("  sk-TRIMMED0001\n"), 0600); err != nil {
		t.Fatalf("Failed to write key file: %v", err)
	}

	got, err := readCandidateKey(path)
	if err != nil {
		t.Fatalf("readCandidateKey failed: %v", err)
	}
	if got != "sk-TRIMMED0001" {
		t.Fatalf("expected surrounding whitespace to be trimmed, got %q", got)
	}

	// "-" reads the key from stdin instead.
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	if _, err := w.WriteString("sk-FROMSTDIN99\n"); err != nil {
		t.Fatalf("Failed to write to pipe: %v", err)
	}
	w.Close()
	oldStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = oldStdin }()

	got, err = readCandidateKey("-")
	if err != nil {
		t.Fatalf("readCandidateKey from stdin failed: %v", err)
	}
	if got != "sk-FROMSTDIN99" {
		t.Fatalf("expected the stdin key, got %q", got)
	}

	if _, err := readCandidateKey(filepath.Join(tmp, "missing.txt")); err == nil {
		t.Fatalf("expected an error for a missing key file")
	}
}
