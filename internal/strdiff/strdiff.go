// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package strdiff measures how far apart two strings are and locates
// the first position where they differ.
package strdiff

// contextRadius is the number of runes shown on either side of the
// first differing position.
const contextRadius = 3

// Divergence describes the first rune position where two strings
// differ, with a short window of surrounding runes from each side.
type Divergence struct {
	Index        int    // Rune index of the first difference
	LeftContext  string // Window around Index in the first string
	RightContext string // Window around Index in the second string
}

// Distance computes the Levenshtein edit distance between two strings.
// The distance is the minimum number of single-rune edits (insertions,
// deletions, or substitutions) required to transform one string into
// the other.
func Distance(a, b string) int {
	// Use []rune so multi-byte characters count as single edits
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Keep the shorter string on the row for O(min(m,n)) space
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

// FirstDivergence reports where a and b first differ. When one string
// is a prefix of the other, the divergence sits at the end of the
// shorter string. The second return is false when the strings are
// identical and no divergence exists.
func FirstDivergence(a, b string) (Divergence, bool) {
	ra := []rune(a)
	rb := []rune(b)

	limit := len(ra)
	if len(rb) < limit {
		limit = len(rb)
	}

	idx := -1
	for i := 0; i < limit; i++ {
		if ra[i] != rb[i] {
			idx = i
			break
		}
	}
	if idx < 0 {
		if len(ra) == len(rb) {
			return Divergence{}, false
		}
		// One string is a prefix of the other
		idx = limit
	}

	lo := idx - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := idx + contextRadius + 1

	return Divergence{
		Index:        idx,
		LeftContext:  window(ra, lo, hi),
		RightContext: window(rb, lo, hi),
	}, true
}

// window slices [lo, hi) out of rs, clipping hi to the slice length.
func window(rs []rune, lo, hi int) string {
	if lo >= len(rs) {
		return ""
	}
	if hi > len(rs) {
		hi = len(rs)
	}
	return string(rs[lo:hi])
}
