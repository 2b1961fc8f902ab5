// Package device extracts holder device metadata from the User-Agent header.
// The gateway never blocks on it; the metadata only enriches audit events.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Metadata describes the holder client that made a presentation call.
type Metadata struct {
	OS       string
	Browser  string
	Platform string
}

// Parse derives device metadata from a User-Agent string. Unknown or empty
// inputs produce "unknown" fields rather than errors.
func Parse(userAgentString string) Metadata {
	if userAgentString == "" {
		return Metadata{OS: "unknown", Browser: "unknown", Platform: "unknown"}
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	browser = strings.ToLower(strings.TrimSpace(browser))
	if browser == "" {
		browser = "unknown"
	}

	os := strings.ToLower(strings.TrimSpace(ua.OS()))
	if os == "" {
		os = "unknown"
	}

	platform := "desktop"
	if ua.Mobile() {
		platform = "mobile"
	}

	return Metadata{OS: os, Browser: browser, Platform: platform}
}
