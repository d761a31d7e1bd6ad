// Package mask renders stored credentials for display without ever
// exposing the full secret.
package mask

// Placeholder is shown when no credential is stored.
const Placeholder = "—"

// DefaultVisible is the suffix length used when the caller does not pick one.
const DefaultVisible = 4

// marker replaces the hidden part of the key. It is a constant label, not
// derived from the secret, so the masked form reveals nothing about the
// key's own prefix.
const marker = "sk-…"

// Mask renders secret as the constant marker plus its last visible
// characters. An empty secret yields Placeholder. visible <= 0 selects
// DefaultVisible; a visible longer than the secret is clipped to it.
func Mask(secret string, visible int) string {
	if secret == "" {
		return Placeholder
	}
	if visible <= 0 {
		visible = DefaultVisible
	}
	r := []rune(secret)
	if visible > len(r) {
		visible = len(r)
	}
	return marker + string(r[len(r)-visible:])
}
