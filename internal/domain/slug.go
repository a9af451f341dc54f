package domain

import (
	"strings"
	"unicode"
)

// MaxSlugLen bounds project slugs; npm package names allow more, folder names should not.
const MaxSlugLen = 64

// Slugify converts a project name into a lowercase hyphen slug.
// Letters and digits are kept, whitespace, underscores and dots become hyphens,
// everything else is dropped. Returns "site" when nothing is left.
func Slugify(name string, maxLen int) string {
	if maxLen <= 0 {
		return "site"
	}

	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '_' || r == '-' || r == '.':
			b.WriteRune('-')
		}
	}

	result := strings.Trim(collapseHyphens(b.String()), "-")
	if len(result) > maxLen {
		result = strings.Trim(result[:maxLen], "-")
	}
	if result == "" {
		return "site"
	}
	return result
}

func collapseHyphens(s string) string {
	var b strings.Builder
	prevHyphen := false
	for _, r := range s {
		if r == '-' {
			if !prevHyphen {
				b.WriteRune(r)
			}
			prevHyphen = true
			continue
		}
		b.WriteRune(r)
		prevHyphen = false
	}
	return b.String()
}
