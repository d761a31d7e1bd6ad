package model

// Setting is a single key/value row in the preference store. Values are
// stored as strings; typed access lives in the settings package.
type Setting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

// AuditLogEntry represents one recorded action in the audit trail.
type AuditLogEntry struct {
	ID        int    `json:"id"`
	Timestamp string `json:"timestamp"`
	Username  string `json:"username"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

// Model providers the assistant can be pointed at. The stored provider
// preference is validated against KnownProviders.
const (
	ProviderOpenAI    = "openai"
	ProviderAzure     = "azure"
	ProviderAnthropic = "anthropic"
	ProviderLocal     = "local"
)

// DefaultProvider is used when no provider preference has been stored.
const DefaultProvider = ProviderOpenAI

// KnownProviders lists the accepted values for the provider preference, in
// display order.
var KnownProviders = []string{ProviderOpenAI, ProviderAzure, ProviderAnthropic, ProviderLocal}

// IsKnownProvider reports whether p is one of the accepted provider values.
func IsKnownProvider(p string) bool {
	for _, known := range KnownProviders {
		if p == known {
			return true
		}
	}
	return false
}
