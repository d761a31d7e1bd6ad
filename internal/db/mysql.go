// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for Keywarden.
// This file contains the MySQL implementation of the database store.
// The DSN should include `?parseTime=true` style options as needed, e.g.
// "user:password@tcp(host:port)/dbname".
package db // import "github.com/keywarden/keywarden/internal/db"

import (
	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/keywarden/keywarden/internal/model"
	"github.com/uptrace/bun"
)

// MySQLStore is the MySQL implementation of the Store interface.
type MySQLStore struct {
	bun *bun.DB
}

// BunDB exposes the underlying Bun handle for diagnostics and tests.
func (s *MySQLStore) BunDB() *bun.DB {
	return s.bun
}

// GetSetting retrieves the value for a settings key.
func (s *MySQLStore) GetSetting(key string) (string, error) {
	return GetSettingBun(s.bun, key)
}

// SetSetting stores or replaces the value for a settings key using MySQL's
// ON DUPLICATE KEY UPDATE form.
func (s *MySQLStore) SetSetting(key, value string) error {
	return SetSettingMySQLBun(s.bun, key, value)
}

// DeleteSetting removes a settings key.
func (s *MySQLStore) DeleteSetting(key string) error {
	return DeleteSettingBun(s.bun, key)
}

// GetAllSettings retrieves all stored settings ordered by key.
func (s *MySQLStore) GetAllSettings() ([]model.Setting, error) {
	return GetAllSettingsBun(s.bun)
}

// GetAllAuditLogEntries retrieves all entries from the audit log, most recent first.
func (s *MySQLStore) GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	return GetAllAuditLogEntriesBun(s.bun)
}

// LogAction records an audit trail event.
func (s *MySQLStore) LogAction(action string, details string) error {
	return LogActionBun(s.bun, action, details)
}

// ExportDataForBackup retrieves all data from the database for a backup.
func (s *MySQLStore) ExportDataForBackup() (*model.BackupData, error) {
	return ExportDataForBackupBun(s.bun)
}

// ImportDataFromBackup restores the database from a backup data structure.
func (s *MySQLStore) ImportDataFromBackup(backup *model.BackupData) error {
	return ImportDataFromBackupBun(s.bun, backup)
}

// IntegrateDataFromBackup restores data from a backup in a non-destructive way.
func (s *MySQLStore) IntegrateDataFromBackup(backup *model.BackupData) error {
	return IntegrateDataFromBackupBun(s.bun, backup)
}
