package gate

import "testing"

func TestCanSave(t *testing.T) {
	cases := []struct {
		name                                    string
		matches, acknowledged, small, overridden bool
		want                                    bool
	}{
		{"mismatch blocks", false, true, false, false, false},
		{"missing acknowledgement blocks", true, false, false, false, false},
		{"small edit blocks", true, true, true, false, false},
		{"small edit overridden", true, true, true, true, true},
		{"clean replacement", true, true, false, false, true},
		{"override without small edit", true, true, false, true, true},
		{"override cannot skip matching", false, true, true, true, false},
		{"override cannot skip acknowledgement", true, false, true, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CanSave(tc.matches, tc.acknowledged, tc.small, tc.overridden)
			if got != tc.want {
				t.Fatalf("CanSave(%v, %v, %v, %v) = %v, want %v",
					tc.matches, tc.acknowledged, tc.small, tc.overridden, got, tc.want)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	cases := []struct {
		name         string
		candidate    string
		confirmation string
		want         bool
	}{
		{"equal non-empty", "sk-abc123", "sk-abc123", true},
		{"differing", "sk-abc123", "sk-abc124", false},
		{"both empty", "", "", false},
		{"empty confirmation", "sk-abc123", "", false},
		{"empty candidate", "", "sk-abc123", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Matches(tc.candidate, tc.confirmation); got != tc.want {
				t.Fatalf("Matches(%q, %q) = %v, want %v", tc.candidate, tc.confirmation, got, tc.want)
			}
		})
	}
}

func TestSmallEdit(t *testing.T) {
	cases := []struct {
		name      string
		current   string
		candidate string
		want      bool
	}{
		{"identical", "sk-AAAA1111", "sk-AAAA1111", true},
		{"one edit", "sk-AAAA1111", "sk-AAAA1112", true},
		{"two edits", "sk-AAAA1111", "sk-AAAA1122", true},
		{"three edits", "sk-AAAA1111", "sk-AAAA1222", false},
		{"unrelated keys", "sk-AAAA1111", "sk-ZZZZ9999x", false},
		{"no current key", "", "sk-AAAA1112", false},
		{"no candidate", "sk-AAAA1111", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SmallEdit(tc.current, tc.candidate); got != tc.want {
				t.Fatalf("SmallEdit(%q, %q) = %v, want %v", tc.current, tc.candidate, got, tc.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	// Typo-like replacement entered consistently and acknowledged, but
	// the small-edit guard still holds until the user overrides it.
	st := Evaluate("sk-AAAA1111", "sk-AAAA1112", "sk-AAAA1112", true, false)
	if !st.KeysMatch || !st.Acknowledged || !st.SmallEditDetected || st.SmallEditOverridden {
		t.Fatalf("unexpected state: %+v", st)
	}
	if st.CanSave() {
		t.Fatal("save allowed despite unoverridden small edit")
	}

	st = Evaluate("sk-AAAA1111", "sk-AAAA1112", "sk-AAAA1112", true, true)
	if !st.CanSave() {
		t.Fatal("save blocked despite override")
	}

	// A genuinely different key needs no override.
	st = Evaluate("sk-AAAA1111", "sk-BBBB2222", "sk-BBBB2222", true, false)
	if st.SmallEditDetected {
		t.Fatal("distant replacement flagged as small edit")
	}
	if !st.CanSave() {
		t.Fatal("save blocked for a clean replacement")
	}

	// First-time setup has no current key, so the guard stays off.
	st = Evaluate("", "sk-AAAA1111", "sk-AAAA1111", true, false)
	if st.SmallEditDetected {
		t.Fatal("small edit flagged without a current key")
	}
	if !st.CanSave() {
		t.Fatal("save blocked for initial key")
	}
}
