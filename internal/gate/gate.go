// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package gate decides whether a candidate credential may replace the
// stored one. Saving requires a matching confirmation and an explicit
// acknowledgement. A candidate within a couple of edits of the existing
// key is additionally held back until the user overrides the small-edit
// warning.
package gate

import "github.com/keywarden/keywarden/internal/strdiff"

// SmallChangeThreshold is the edit distance at or below which a
// candidate counts as a suspicious small edit of the current key.
const SmallChangeThreshold = 2

// State holds the four conditions feeding the save decision. It is
// transient and recomputed from user input on every change.
type State struct {
	KeysMatch           bool
	Acknowledged        bool
	SmallEditDetected   bool
	SmallEditOverridden bool
}

// CanSave reports whether the replacement may be persisted.
func (s State) CanSave() bool {
	return CanSave(s.KeysMatch, s.Acknowledged, s.SmallEditDetected, s.SmallEditOverridden)
}

// CanSave combines the gating conditions into the save decision. A
// detected small edit blocks the save unless overridden; a mismatch or
// a missing acknowledgement always blocks it.
func CanSave(matches, acknowledged, smallEdit, overridden bool) bool {
	return matches && acknowledged && (!smallEdit || overridden)
}

// Matches reports whether the candidate and its confirmation agree.
// Both must be non-empty; two empty inputs do not count as a match.
func Matches(candidate, confirmation string) bool {
	return candidate != "" && candidate == confirmation
}

// SmallEdit reports whether the candidate is within
// SmallChangeThreshold edits of the current key. When either side is
// empty there is no meaningful distance and the guard stays off.
func SmallEdit(current, candidate string) bool {
	if current == "" || candidate == "" {
		return false
	}
	return strdiff.Distance(current, candidate) <= SmallChangeThreshold
}

// Evaluate recomputes the full gate state from the raw inputs.
func Evaluate(current, candidate, confirmation string, acknowledged, overridden bool) State {
	return State{
		KeysMatch:           Matches(candidate, confirmation),
		Acknowledged:        acknowledged,
		SmallEditDetected:   SmallEdit(current, candidate),
		SmallEditOverridden: overridden,
	}
}
