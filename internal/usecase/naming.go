package usecase

import (
	"regexp"
	"strings"
)

var (
	// Trailing "1920x1080" style dimension tokens, with optional
	// separators before the token.
	dimensionSuffix = regexp.MustCompile(`[_\-\s]*\d{1,4}\s*[:xX×]\s*\d{1,4}$`)

	// Trailing platform-format tokens appended by export tooling.
	formatSuffix = regexp.MustCompile(`(?i)[_\-\s]*(post|story|feed|infeed|square|vertical|horizontal)$`)
)

// BaseName derives a group name from an asset filename: drop the last
// extension, then a trailing dimension token, then a trailing format
// token. Each step runs once; a non-matching step leaves the string
// untouched.
func BaseName(filename string) string {
	base := filename
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		base = filename[:i]
	}

	base = dimensionSuffix.ReplaceAllString(base, "")
	base = formatSuffix.ReplaceAllString(base, "")

	return strings.TrimSpace(base)
}
