package localization

import (
	"slices"
	"strings"

	"github.com/statyba/storefront/internal/domain/shared"
	"golang.org/x/text/language"
)

// Locales describes the languages the storefront serves
type Locales struct {
	supported []language.Tag
	codes     []string
	def       string
	matcher   language.Matcher
}

// NewLocales builds the locale set. The default locale must be one of supported
// and is moved to the front so it wins ties during negotiation.
func NewLocales(supported []string, defaultLocale string) (*Locales, error) {
	def, err := canonical(defaultLocale)
	if err != nil {
		return nil, err
	}

	codes := []string{def}
	for _, code := range supported {
		c, err := canonical(code)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(codes, c) {
			codes = append(codes, c)
		}
	}
	if len(supported) > 0 {
		found := false
		for _, code := range supported {
			if c, _ := canonical(code); c == def {
				found = true
				break
			}
		}
		if !found {
			return nil, shared.NewDomainError("INVALID_LOCALE", "Default locale must be listed in supported locales")
		}
	}

	tags := make([]language.Tag, len(codes))
	for i, c := range codes {
		tags[i] = language.MustParse(c)
	}
	return &Locales{
		supported: tags,
		codes:     codes,
		def:       def,
		matcher:   language.NewMatcher(tags),
	}, nil
}

// Default returns the default locale code
func (l *Locales) Default() string {
	return l.def
}

// Supported returns every supported locale code, default first
func (l *Locales) Supported() []string {
	return slices.Clone(l.codes)
}

// IsSupported reports whether code is served exactly
func (l *Locales) IsSupported(code string) bool {
	c, err := canonical(code)
	if err != nil {
		return false
	}
	return slices.Contains(l.codes, c)
}

// Negotiate picks the locale for a request. An explicit override (a ?locale=
// parameter or a customer preference) wins when it matches a supported
// locale, regional variants included (lt-LT serves lt); otherwise the
// Accept-Language header is matched; otherwise the default is used.
func (l *Locales) Negotiate(acceptLanguage string, overrides ...string) string {
	for _, o := range overrides {
		if strings.TrimSpace(o) == "" {
			continue
		}
		tag, err := language.Parse(strings.TrimSpace(o))
		if err != nil {
			continue
		}
		if code, ok := l.match(tag); ok {
			return code
		}
	}

	if strings.TrimSpace(acceptLanguage) == "" {
		return l.def
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.def
	}
	if code, ok := l.match(tags...); ok {
		return code
	}
	return l.def
}

func (l *Locales) match(tags ...language.Tag) (string, bool) {
	_, idx, confidence := l.matcher.Match(tags...)
	if confidence == language.No {
		return "", false
	}
	return l.codes[idx], true
}

// FallbackChain returns the lookup order for translations of code:
// the locale itself, its base language when that is supported, then the default.
func (l *Locales) FallbackChain(code string) []string {
	chain := make([]string, 0, 3)
	c, err := canonical(code)
	if err == nil && slices.Contains(l.codes, c) {
		chain = append(chain, c)
	}
	if err == nil {
		if base, conf := language.MustParse(c).Base(); conf != language.No {
			if b := base.String(); b != c && slices.Contains(l.codes, b) && !slices.Contains(chain, b) {
				chain = append(chain, b)
			}
		}
	}
	if !slices.Contains(chain, l.def) {
		chain = append(chain, l.def)
	}
	return chain
}

func canonical(code string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil || tag == language.Und {
		return "", shared.NewDomainError("INVALID_LOCALE", "Invalid locale code: "+code)
	}
	return tag.String(), nil
}
