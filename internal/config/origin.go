package config

import (
	"fmt"
	"net/url"
	"strings"
)

// SanitizeOrigin validates and normalizes a CORS origin.
// It returns scheme://host[:port] in lowercase; a missing scheme defaults to https.
// Paths, queries, fragments, wildcards, and empty values are rejected.
func SanitizeOrigin(raw string) (string, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", fmt.Errorf("origin cannot be empty")
	}

	// Remove a single trailing slash (root path)
	cleaned = strings.TrimSuffix(cleaned, "/")

	if strings.ContainsAny(cleaned, " \t\r\n") {
		return "", fmt.Errorf("origin cannot contain whitespace")
	}
	if strings.Contains(cleaned, "*") {
		return "", fmt.Errorf("wildcards are not allowed in origins")
	}
	if !strings.Contains(cleaned, "://") {
		cleaned = "https://" + cleaned
	}

	u, err := url.Parse(cleaned)
	if err != nil {
		return "", fmt.Errorf("invalid origin format")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("origin scheme must be http or https")
	}
	if u.Host == "" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("origin must not include path, query, or fragment")
	}

	return u.Scheme + "://" + u.Host, nil
}
