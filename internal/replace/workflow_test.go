package replace

import (
	"errors"
	"testing"
)

// fakeStore is an in-memory CredentialStore for workflow tests.
type fakeStore struct {
	value      string
	currentErr error
	replaceErr error
	replaced   int
}

func (f *fakeStore) Current() (string, error) {
	return f.value, f.currentErr
}

func (f *fakeStore) Replace(value string) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.value = value
	f.replaced++
	return nil
}

func TestWorkflowSmallEditScenario(t *testing.T) {
	store := &fakeStore{value: "sk-AAAA1111"}
	w := New(store)

	if err := w.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}

	w.SetCandidate("sk-AAAA1112")
	w.SetConfirmation("sk-AAAA1112")
	w.SetAcknowledged(true)

	r := w.Report()
	if !r.Gate.KeysMatch {
		t.Fatal("identically entered keys did not match")
	}
	if !r.Compared || r.Distance != 1 {
		t.Fatalf("Compared=%v Distance=%d, want compared at distance 1", r.Compared, r.Distance)
	}
	if !r.Gate.SmallEditDetected {
		t.Fatal("distance-1 replacement not flagged as small edit")
	}
	if !r.Diverged || r.Divergence.Index != 10 {
		t.Fatalf("Diverged=%v Index=%d, want divergence at 10", r.Diverged, r.Divergence.Index)
	}
	if w.CanSave() {
		t.Fatal("save allowed without override")
	}
	if err := w.Save(); !errors.Is(err, ErrBlocked) {
		t.Fatalf("Save without override = %v, want ErrBlocked", err)
	}
	if store.replaced != 0 {
		t.Fatal("store written despite blocked save")
	}

	w.SetOverridden(true)
	if !w.CanSave() {
		t.Fatal("save still blocked after override")
	}
	if err := w.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if store.value != "sk-AAAA1112" || store.replaced != 1 {
		t.Fatalf("store = %q after %d writes, want sk-AAAA1112 after 1", store.value, store.replaced)
	}
	if w.IsOpen() {
		t.Fatal("workflow still open after save")
	}
}

func TestWorkflowOpenResetsState(t *testing.T) {
	store := &fakeStore{value: "sk-OLD"}
	w := New(store)

	if err := w.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	w.SetCandidate("sk-NEW-12345")
	w.SetConfirmation("sk-NEW-12345")
	w.SetAcknowledged(true)
	w.SetOverridden(true)
	w.Close()

	if err := w.Open(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	r := w.Report()
	if r.Gate.KeysMatch || r.Gate.Acknowledged || r.Gate.SmallEditOverridden {
		t.Fatalf("reopen kept stale input: %+v", r.Gate)
	}
	if r.Compared {
		t.Fatal("reopen kept a stale candidate comparison")
	}
	if w.Current() != "sk-OLD" {
		t.Fatalf("Current = %q, want sk-OLD", w.Current())
	}
}

func TestWorkflowSaveWhenClosed(t *testing.T) {
	w := New(&fakeStore{value: "sk-OLD"})
	if err := w.Save(); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("Save on closed workflow = %v, want ErrNotOpen", err)
	}
	if w.CanSave() {
		t.Fatal("CanSave true on closed workflow")
	}
}

func TestWorkflowOpenPropagatesStoreError(t *testing.T) {
	wantErr := errors.New("store unavailable")
	w := New(&fakeStore{currentErr: wantErr})
	if err := w.Open(); !errors.Is(err, wantErr) {
		t.Fatalf("Open = %v, want store error", err)
	}
	if w.IsOpen() {
		t.Fatal("workflow open despite failed store read")
	}
}

func TestWorkflowSaveKeepsStateOnStoreError(t *testing.T) {
	store := &fakeStore{value: "sk-OLD", replaceErr: errors.New("disk full")}
	w := New(store)
	if err := w.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	w.SetCandidate("sk-NEW-12345")
	w.SetConfirmation("sk-NEW-12345")
	w.SetAcknowledged(true)

	if err := w.Save(); err == nil {
		t.Fatal("Save succeeded despite store failure")
	}
	if !w.IsOpen() {
		t.Fatal("workflow closed after failed store write")
	}

	// Retry succeeds once the store recovers.
	store.replaceErr = nil
	if err := w.Save(); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	if store.value != "sk-NEW-12345" {
		t.Fatalf("store = %q, want sk-NEW-12345", store.value)
	}
}

func TestWorkflowInitialKeyWithoutCurrent(t *testing.T) {
	// No stored key yet: the small-edit guard stays off and a plain
	// acknowledged entry saves.
	store := &fakeStore{}
	w := New(store)
	if err := w.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	w.SetCandidate("sk-FIRST-KEY")
	w.SetConfirmation("sk-FIRST-KEY")
	w.SetAcknowledged(true)

	r := w.Report()
	if r.Compared || r.Gate.SmallEditDetected {
		t.Fatalf("guard active without a stored key: %+v", r)
	}
	if err := w.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if store.value != "sk-FIRST-KEY" {
		t.Fatalf("store = %q, want sk-FIRST-KEY", store.value)
	}
}
