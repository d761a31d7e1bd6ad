package db

import (
	"strings"

	"github.com/keywarden/keywarden/internal/model"
)

// TokenizeFilterQuery splits a query into lower-cased tokens, trimming whitespace.
// Returns nil for empty input.
func TokenizeFilterQuery(q string) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	parts := strings.Fields(q)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FilterAuditEntriesByTokens returns the subset of `entries` that match all
// tokens. Matching is case-insensitive and tests username, action, details,
// and timestamp for substring containment. If `tokens` is nil or empty, the
// original slice is returned.
func FilterAuditEntriesByTokens(entries []model.AuditLogEntry, tokens []string) []model.AuditLogEntry {
	if len(tokens) == 0 {
		return entries
	}
	out := make([]model.AuditLogEntry, 0, len(entries))
	for _, e := range entries {
		username := strings.ToLower(e.Username)
		action := strings.ToLower(e.Action)
		details := strings.ToLower(e.Details)
		timestamp := strings.ToLower(e.Timestamp)

		matchedAll := true
		for _, tok := range tokens {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok == "" {
				continue
			}
			if !strings.Contains(username, tok) && !strings.Contains(action, tok) &&
				!strings.Contains(details, tok) && !strings.Contains(timestamp, tok) {
				matchedAll = false
				break
			}
		}
		if matchedAll {
			out = append(out, e)
		}
	}
	return out
}
