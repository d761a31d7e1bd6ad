// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

package settings

// CredentialStore adapts the settings layer to the replacement workflow's
// storage interface (replace.CredentialStore).
type CredentialStore struct{}

// Current returns the stored API key; "" when none is stored yet.
func (CredentialStore) Current() (string, error) { return Credential() }

// Replace persists the new API key and audits the change.
func (CredentialStore) Replace(value string) error { return SetCredential(value) }
