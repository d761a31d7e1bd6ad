// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"testing"
)

// newTestDB initializes the package-level store with an in-memory sqlite
// database unique to the calling test and returns its DSN.
func newTestDB(t *testing.T) string {
	t.Helper()
	dsn := "file:test_" + t.Name() + "?mode=memory&cache=shared"
	if err := InitDB("sqlite", dsn); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return dsn
}

// WithTestStore initializes an in-memory sqlite Store for the duration of the
// provided function and restores package-level globals afterwards.
func WithTestStore(t *testing.T, fn func(s *SqliteStore)) {
	t.Helper()

	prevStore := store
	prevAuditWriter := defaultAuditWriter

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	if err := InitDB("sqlite", dsn); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	s, ok := store.(*SqliteStore)
	if !ok {
		t.Fatalf("store is not *SqliteStore")
	}

	defer func() {
		store = prevStore
		defaultAuditWriter = prevAuditWriter
	}()

	fn(s)
}

// WithAuditWriter temporarily sets the package-level AuditWriter for the
// duration of fn and restores the previous writer afterwards.
func WithAuditWriter(t *testing.T, w AuditWriter, fn func()) {
	t.Helper()
	prev := defaultAuditWriter
	defaultAuditWriter = w
	defer func() { defaultAuditWriter = prev }()
	fn()
}
