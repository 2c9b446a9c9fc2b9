package util

import (
	"net/mail"
	"strings"
)

// ParseRecipients splits a comma-separated recipient string and trims each
// segment. Empty segments (e.g. from a trailing comma) are kept and nothing
// is de-duplicated or validated; the send endpoint decides what it accepts.
func ParseRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// NormalizeAddress reduces an address to a comparable key.
// - Parses RFC 5322 values like "Name <User@Example.COM>"
// - Lowercases
// Unparsable input is lowercased and trimmed as-is.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if a, err := mail.ParseAddress(addr); err == nil && a != nil {
		addr = a.Address
	}
	return strings.ToLower(strings.TrimSpace(addr))
}

// RecipientsKey builds the history key for a parsed recipient list:
// normalized addresses in order, empty segments dropped.
func RecipientsKey(recipients []string) string {
	keys := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if k := NormalizeAddress(r); k != "" {
			keys = append(keys, k)
		}
	}
	return strings.Join(keys, ", ")
}
