package repository

import (
	"net/url"
	"strings"
)

const secureScheme = "https://"

// IsValidURL reports whether raw is a well-formed absolute URL that uses
// HTTPS. Only these URLs are handed to a Cloner.
func IsValidURL(raw string) bool {
	if !strings.HasPrefix(raw, secureScheme) {
		return false
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return u.Host != ""
}
