// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

// debug_export is a development probe: it seeds an in-memory database,
// runs the backup export and prints a summary. Useful for eyeballing
// the export shape after schema changes without touching a real store.
package main

import (
	"fmt"

	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/mask"
	"github.com/keywarden/keywarden/internal/settings"
)

func main() {
	dsn := "file:debprobe?mode=memory&cache=shared"
	if err := db.InitDB("sqlite", dsn); err != nil {
		panic(err)
	}

	if err := settings.SetCredential("sk-DEBUGPROBE0001"); err != nil {
		panic(err)
	}
	if err := settings.SetProvider("local"); err != nil {
		panic(err)
	}
	if err := settings.SetRetainVoiceNotes(true); err != nil {
		panic(err)
	}

	backup, err := db.ExportDataForBackup()
	if err != nil {
		panic(err)
	}

	fmt.Printf("schema version: %d\n", backup.SchemaVersion)
	fmt.Printf("settings: %d\n", len(backup.Settings))
	for _, s := range backup.Settings {
		value := s.Value
		if s.Key == settings.KeyAPIKey {
			// Even a debug probe keeps the raw key off stdout.
			value = mask.Mask(value, 0)
		}
		fmt.Printf("setting: %s = %s\n", s.Key, value)
	}

	fmt.Printf("audit entries: %d\n", len(backup.AuditLogEntries))
	for _, e := range backup.AuditLogEntries {
		fmt.Printf("audit: %s %s\n", e.Action, e.Details)
	}
}
