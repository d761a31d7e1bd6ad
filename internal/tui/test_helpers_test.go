// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"testing"

	"github.com/keywarden/keywarden/internal/db"
)

// initTestDBT initializes an in-memory sqlite DB for tests. The DSN is
// derived from the test name so parallel packages don't share state.
func initTestDBT(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:tui_%s?mode=memory&cache=shared", t.Name())
	if err := db.InitDB("sqlite", dsn); err != nil {
		t.Fatalf("initTestDBT: db.InitDB failed: %v", err)
	}
}
