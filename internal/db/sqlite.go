// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for Keywarden.
// This file contains the SQLite implementation of the database store.
package db // import "github.com/keywarden/keywarden/internal/db"

import (
	"github.com/keywarden/keywarden/internal/model"
	"github.com/uptrace/bun"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SqliteStore is the SQLite implementation of the Store interface.
type SqliteStore struct {
	bun *bun.DB
}

// BunDB exposes the underlying Bun handle for diagnostics and tests.
func (s *SqliteStore) BunDB() *bun.DB {
	return s.bun
}

// GetSetting retrieves the value for a settings key.
func (s *SqliteStore) GetSetting(key string) (string, error) {
	return GetSettingBun(s.bun, key)
}

// SetSetting stores or replaces the value for a settings key.
// Writes are not audited here; callers log actions with domain-level
// detail at a higher layer.
func (s *SqliteStore) SetSetting(key, value string) error {
	return SetSettingBun(s.bun, key, value)
}

// DeleteSetting removes a settings key.
func (s *SqliteStore) DeleteSetting(key string) error {
	return DeleteSettingBun(s.bun, key)
}

// GetAllSettings retrieves all stored settings ordered by key.
func (s *SqliteStore) GetAllSettings() ([]model.Setting, error) {
	return GetAllSettingsBun(s.bun)
}

// GetAllAuditLogEntries retrieves all entries from the audit log, most recent first.
func (s *SqliteStore) GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	return GetAllAuditLogEntriesBun(s.bun)
}

// LogAction records an audit trail event.
func (s *SqliteStore) LogAction(action string, details string) error {
	return LogActionBun(s.bun, action, details)
}

// ExportDataForBackup retrieves all data from the database for a backup.
// It uses a transaction to ensure a consistent snapshot of the data.
func (s *SqliteStore) ExportDataForBackup() (*model.BackupData, error) {
	return ExportDataForBackupBun(s.bun)
}

// ImportDataFromBackup restores the database from a backup data structure.
// It performs a full wipe-and-replace within a single transaction to ensure atomicity.
func (s *SqliteStore) ImportDataFromBackup(backup *model.BackupData) error {
	return ImportDataFromBackupBun(s.bun, backup)
}

// IntegrateDataFromBackup restores data from a backup in a non-destructive way,
// skipping entries that already exist.
func (s *SqliteStore) IntegrateDataFromBackup(backup *model.BackupData) error {
	return IntegrateDataFromBackupBun(s.bun, backup)
}
