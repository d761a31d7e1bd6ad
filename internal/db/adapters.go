// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

// AuditWriter is a minimal interface for recording audit events. Consumers
// can depend on this instead of the full Store, and tests can inject a fake
// writer to capture actions without a database.
type AuditWriter interface {
	LogAction(action string, details string) error
}

var defaultAuditWriter AuditWriter

// DefaultAuditWriter returns the injected audit writer, or nil when none is
// set. Package-level LogAction falls back to the store when this is nil.
func DefaultAuditWriter() AuditWriter {
	return defaultAuditWriter
}

// SetDefaultAuditWriter injects an AuditWriter override. Intended for tests.
func SetDefaultAuditWriter(w AuditWriter) {
	defaultAuditWriter = w
}

// ClearDefaultAuditWriter removes any injected AuditWriter.
func ClearDefaultAuditWriter() {
	defaultAuditWriter = nil
}
