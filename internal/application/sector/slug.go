package sector

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9_-]+$`)
	colorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)
	lower        = cases.Lower(language.Und)
)

// NormalizeSlug recorta y pasa a minúsculas. No valida.
func NormalizeSlug(s string) string {
	return lower.String(strings.TrimSpace(s))
}

// ValidSlug indica si el slug solo tiene minúsculas, dígitos, guiones o guiones bajos.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// SuggestSlug deriva un slug del nombre: quita acentos, pasa a minúsculas y colapsa cualquier
// otro carácter en un guion ("Mantenimiento Eléctrico" -> "mantenimiento-electrico").
func SuggestSlug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}
	plain = lower.String(plain)

	var b strings.Builder
	dash := false
	for _, r := range plain {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NormalizeColor "#rrggbb" en minúsculas; ok=false si no es un hex de 6 dígitos. Vacío es válido.
func NormalizeColor(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if !colorPattern.MatchString(s) {
		return "", false
	}
	return "#" + strings.ToLower(strings.TrimPrefix(s, "#")), true
}
