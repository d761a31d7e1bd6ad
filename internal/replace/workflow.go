// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package replace drives the credential replacement workflow. A
// workflow opens against the stored key, collects the candidate and
// its confirmation together with the user's acknowledgements, and
// persists the candidate only once the gate allows it.
package replace

import (
	"errors"

	"github.com/keywarden/keywarden/internal/gate"
	"github.com/keywarden/keywarden/internal/strdiff"
)

// ErrNotOpen is returned when saving without an open workflow.
var ErrNotOpen = errors.New("replacement workflow is not open")

// ErrBlocked is returned when saving while the gate conditions are not met.
var ErrBlocked = errors.New("replacement blocked by gate conditions")

// CredentialStore is the persistence collaborator holding the stored
// key. The workflow reads it once on open and writes it at most once
// per successful save.
type CredentialStore interface {
	Current() (string, error)
	Replace(value string) error
}

// Report is the derived view of an in-progress replacement, recomputed
// from the transient inputs on every call.
type Report struct {
	Gate       gate.State
	Compared   bool // Current and candidate both present, distance is meaningful
	Distance   int
	Diverged   bool
	Divergence strdiff.Divergence
}

// Workflow holds the transient state of one replacement attempt.
// Opening resets all inputs; closing discards them. Nothing here is
// persisted.
type Workflow struct {
	store CredentialStore

	open         bool
	current      string
	candidate    string
	confirmation string
	acknowledged bool
	overridden   bool
}

// New returns a closed workflow bound to the given store.
func New(store CredentialStore) *Workflow {
	return &Workflow{store: store}
}

// Open reads the stored key and enters the editing state with a clean
// slate, discarding any prior in-progress edit.
func (w *Workflow) Open() error {
	current, err := w.store.Current()
	if err != nil {
		return err
	}
	w.open = true
	w.current = current
	w.reset()
	return nil
}

// Close leaves the editing state and discards all transient input.
func (w *Workflow) Close() {
	w.open = false
	w.current = ""
	w.reset()
}

// IsOpen reports whether the workflow is in the editing state.
func (w *Workflow) IsOpen() bool {
	return w.open
}

// Current returns the stored key as read when the workflow opened.
func (w *Workflow) Current() string {
	return w.current
}

// SetCandidate records the proposed new key.
func (w *Workflow) SetCandidate(value string) { w.candidate = value }

// SetConfirmation records the independently re-entered key.
func (w *Workflow) SetConfirmation(value string) { w.confirmation = value }

// SetAcknowledged records the user's replacement acknowledgement.
func (w *Workflow) SetAcknowledged(value bool) { w.acknowledged = value }

// SetOverridden records the user's small-edit override.
func (w *Workflow) SetOverridden(value bool) { w.overridden = value }

// Report recomputes the gate state and the comparison against the
// stored key from the current inputs. No results are cached; the
// inputs are small and the computation is cheap.
func (w *Workflow) Report() Report {
	r := Report{
		Gate: gate.Evaluate(w.current, w.candidate, w.confirmation, w.acknowledged, w.overridden),
	}
	if w.current != "" && w.candidate != "" {
		r.Compared = true
		r.Distance = strdiff.Distance(w.current, w.candidate)
		r.Divergence, r.Diverged = strdiff.FirstDivergence(w.current, w.candidate)
	}
	return r
}

// CanSave reports whether Save would be permitted right now.
func (w *Workflow) CanSave() bool {
	return w.open && w.Report().Gate.CanSave()
}

// Save forwards the candidate to the store and closes the workflow.
// The workflow stays open when the store rejects the write so the
// user can retry or cancel.
func (w *Workflow) Save() error {
	if !w.open {
		return ErrNotOpen
	}
	if !w.Report().Gate.CanSave() {
		return ErrBlocked
	}
	if err := w.store.Replace(w.candidate); err != nil {
		return err
	}
	w.Close()
	return nil
}

func (w *Workflow) reset() {
	w.candidate = ""
	w.confirmation = ""
	w.acknowledged = false
	w.overridden = false
}
