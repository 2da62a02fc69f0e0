package constants

import (
	"strings"
)

// Provider names a completion backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

var allProviders = []Provider{ProviderOpenAI, ProviderGemini}

// ParseProvider maps a free-form label ("OpenAI", " gemini ") to a Provider.
func ParseProvider(s string) (Provider, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, p := range allProviders {
		if string(p) == key {
			return p, true
		}
	}
	return "", false
}
