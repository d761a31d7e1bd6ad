// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package settings provides typed access to the stored credential and
// assistant preferences, layered over the generic key/value store in
// internal/db. Mutations write an audit trail entry with domain-level
// detail; credential values only ever reach the log in masked form.
package settings

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/mask"
	"github.com/keywarden/keywarden/internal/model"
)

// Keys under which the credential and assistant preferences are stored.
const (
	KeyAPIKey           = "credential.api_key"
	KeyProvider         = "assistant.provider"
	KeyRetainVoiceNotes = "assistant.retain_voice_notes"
	KeyShareDiagnostics = "assistant.share_diagnostics"
)

// ErrEmptyCredential is returned when an empty API key would be stored.
var ErrEmptyCredential = errors.New("empty credential")

// ErrUnknownProvider is returned for provider values outside model.KnownProviders.
var ErrUnknownProvider = errors.New("unknown provider")

// Credential returns the stored API key. An unset key reads as "".
func Credential() (string, error) {
	return db.GetSetting(KeyAPIKey)
}

// SetCredential stores a replacement API key and records the change in the
// audit log. The log entry carries only the masked form of the new key.
func SetCredential(value string) error {
	if value == "" {
		return ErrEmptyCredential
	}
	if err := db.SetSetting(KeyAPIKey, value); err != nil {
		return err
	}
	_ = db.LogAction("REPLACE_CREDENTIAL", fmt.Sprintf("new_key: %s", mask.Mask(value, 0)))
	return nil
}

// Provider returns the stored assistant provider. An unset or unrecognized
// value falls back to model.DefaultProvider.
func Provider() (string, error) {
	v, err := db.GetSetting(KeyProvider)
	if err != nil {
		return "", err
	}
	if !model.IsKnownProvider(v) {
		return model.DefaultProvider, nil
	}
	return v, nil
}

// SetProvider stores the assistant provider preference.
func SetProvider(p string) error {
	if !model.IsKnownProvider(p) {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, p)
	}
	if err := db.SetSetting(KeyProvider, p); err != nil {
		return err
	}
	_ = db.LogAction("SET_PROVIDER", fmt.Sprintf("provider: %s", p))
	return nil
}

// RetainVoiceNotes reports whether raw voice notes are kept after
// transcription. Unset reads as false.
func RetainVoiceNotes() (bool, error) {
	return boolSetting(KeyRetainVoiceNotes)
}

// SetRetainVoiceNotes stores the voice note retention preference.
func SetRetainVoiceNotes(on bool) error {
	if err := db.SetSetting(KeyRetainVoiceNotes, strconv.FormatBool(on)); err != nil {
		return err
	}
	_ = db.LogAction("SET_RETAIN_VOICE_NOTES", fmt.Sprintf("enabled: %t", on))
	return nil
}

// ShareDiagnostics reports whether anonymized usage diagnostics are shared.
// Unset reads as false.
func ShareDiagnostics() (bool, error) {
	return boolSetting(KeyShareDiagnostics)
}

// SetShareDiagnostics stores the diagnostics sharing preference.
func SetShareDiagnostics(on bool) error {
	if err := db.SetSetting(KeyShareDiagnostics, strconv.FormatBool(on)); err != nil {
		return err
	}
	_ = db.LogAction("SET_SHARE_DIAGNOSTICS", fmt.Sprintf("enabled: %t", on))
	return nil
}

// boolSetting reads a stored boolean preference. A missing or malformed
// value reads as false rather than failing; toggles always have a usable
// state.
func boolSetting(key string) (bool, error) {
	v, err := db.GetSetting(key)
	if err != nil {
		return false, err
	}
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, nil
	}
	return b, nil
}
