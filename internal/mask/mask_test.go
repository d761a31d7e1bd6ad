package mask

import "testing"

func TestMask(t *testing.T) {
	cases := []struct {
		name    string
		secret  string
		visible int
		want    string
	}{
		{"empty secret", "", 4, "—"},
		{"normal key", "sk-1234567890", 4, "sk-…7890"},
		{"shorter than suffix", "ab", 4, "sk-…ab"},
		{"default visible", "sk-1234567890", 0, "sk-…7890"},
		{"negative visible", "sk-1234567890", -1, "sk-…7890"},
		{"wider suffix", "sk-1234567890", 6, "sk-…567890"},
		{"single char", "x", 4, "sk-…x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Mask(tc.secret, tc.visible); got != tc.want {
				t.Fatalf("Mask(%q, %d) = %q, want %q", tc.secret, tc.visible, got, tc.want)
			}
		})
	}
}

func TestMaskNeverLeaksPrefix(t *testing.T) {
	// The masked form must not contain any part of the secret beyond the
	// suffix window, even when the secret itself starts with the marker text.
	got := Mask("sk-SECRETPREFIX0042", 4)
	if got != "sk-…0042" {
		t.Fatalf("Mask leaked more than the suffix: %q", got)
	}
}
