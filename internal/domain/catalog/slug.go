package catalog

import (
	"strings"
	"unicode"

	"github.com/statyba/storefront/internal/domain/shared"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength is the maximum length of any catalog slug
const MaxSlugLength = 160

// Slugify derives a URL slug from a display name.
// Diacritics are folded ("Žalias ąžuolas" -> "zalias-azuolas") and every run of
// characters outside [a-z0-9] collapses into a single hyphen.
func Slugify(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == 'ł':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteByte('l')
		default:
			pendingDash = true
		}
	}

	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}

// ValidateSlug checks that a slug only contains lowercase letters, digits and single hyphens
func ValidateSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot be empty")
	}
	if len(slug) > MaxSlugLength {
		return shared.NewDomainError("INVALID_SLUG", "Slug is too long")
	}
	if slug[0] == '-' || slug[len(slug)-1] == '-' || strings.Contains(slug, "--") {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot start, end or repeat hyphens")
	}
	for _, r := range slug {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return shared.NewDomainError("INVALID_SLUG", "Slug can only contain lowercase letters, numbers and hyphens")
		}
	}
	return nil
}

// resolveSlug returns the explicit slug when given, otherwise one derived from name
func resolveSlug(slug, name string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if err := ValidateSlug(slug); err != nil {
		return "", err
	}
	return slug, nil
}

func validateName(kind, name string, maxLen int) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", kind+" name cannot be empty")
	}
	if len([]rune(name)) > maxLen {
		return shared.NewDomainError("INVALID_NAME", kind+" name is too long")
	}
	return nil
}
