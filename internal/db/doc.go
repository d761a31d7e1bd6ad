// Package db contains the data-access layer and small DI helpers used by
// Keywarden.
//
// This package exposes a small set of lightweight interfaces and package-level
// helpers that make it easy to inject fakes for tests while preserving a
// centralized Bun-based implementation for production.
//
// DI helpers
//   - `DefaultAuditWriter` returns the injected audit writer when one has been
//     set by tests, or nil so callers fall back to the package-level `store`
//     (initialized via `InitDB`).
//   - `SetDefaultAuditWriter` and `ClearDefaultAuditWriter` allow tests to
//     inject a fake that records actions without touching a database.
//
// Dialect notes
//   - The settings table uses `key` as its primary key column, which is a
//     reserved word on MySQL. Raw clauses quote it through bun.Ident; the
//     MySQL migration quotes it with backticks.
//   - Upserts split per dialect: SQLite/Postgres use ON CONFLICT, MySQL uses
//     ON DUPLICATE KEY UPDATE (see SetSettingBun / SetSettingMySQLBun).
//
// Testing notes
//   - Prefer `db.InitDB("sqlite", "file:test_<name>?mode=memory&cache=shared")`
//     in tests that need real DB semantics and migrations.
//   - For unit tests that only observe audit writes, inject a fake via
//     `SetDefaultAuditWriter`.
package db
