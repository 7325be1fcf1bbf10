// Package slugify derives URL-safe identifier strings from display names.
// The output is deterministic; uniqueness is the caller's concern.
package slugify

import (
	"regexp"
	"strings"
)

const maxLength = 100

var (
	nonSlug = regexp.MustCompile(`[^a-z0-9-]`)
	hyphens = regexp.MustCompile(`-+`)
)

// Make converts a display name to a lowercase hyphenated slug. Names
// without any slug-safe characters produce an empty string.
func Make(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))

	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	slug = nonSlug.ReplaceAllString(slug, "")
	slug = hyphens.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxLength {
		slug = strings.TrimRight(slug[:maxLength], "-")
	}

	return slug
}
