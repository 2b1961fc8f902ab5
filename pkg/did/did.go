// Package did holds helpers for decentralized identifier strings.
package did

import "strings"

// StripFragment removes a trailing #key-fragment from a DID.
// Credentials may reference keys like did:ex:abc#signing-1, while the registry
// stores the bare did:ex:abc; lookups must always use the bare form.
func StripFragment(s string) string {
	if i := strings.Index(s, "#"); i >= 0 {
		return s[:i]
	}
	return s
}
