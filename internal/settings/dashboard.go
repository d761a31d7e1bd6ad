// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

package settings

import (
	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/mask"
	"github.com/keywarden/keywarden/internal/model"
)

// DashboardData holds aggregated values for the main dashboard.
type DashboardData struct {
	HasKey           bool
	MaskedKey        string
	Provider         string
	RetainVoiceNotes bool
	ShareDiagnostics bool
	RecentLogs       []model.AuditLogEntry
}

// BuildDashboardData collects the stored credential state, the assistant
// preferences and the most recent audit entries for the dashboard.
func BuildDashboardData() (DashboardData, error) {
	var out DashboardData

	key, err := Credential()
	if err != nil {
		return out, err
	}
	out.HasKey = key != ""
	out.MaskedKey = mask.Mask(key, 0)

	provider, err := Provider()
	if err != nil {
		return out, err
	}
	out.Provider = provider

	out.RetainVoiceNotes, err = RetainVoiceNotes()
	if err != nil {
		return out, err
	}
	out.ShareDiagnostics, err = ShareDiagnostics()
	if err != nil {
		return out, err
	}

	logs, err := db.GetAllAuditLogEntries()
	if err != nil {
		return out, err
	}
	const maxLogs = 5
	if len(logs) > maxLogs {
		out.RecentLogs = logs[:maxLogs]
	} else {
		out.RecentLogs = logs
	}

	return out, nil
}
