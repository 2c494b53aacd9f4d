package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldName normaliza un nombre para búsqueda: sin tildes ni mayúsculas ("Cañería" → "caneria").
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(strings.TrimSpace(out))
}

// nameMatcher devuelve un predicado de coincidencia parcial; búsqueda vacía acepta todo.
func nameMatcher(search string) func(string) bool {
	needle := foldName(search)
	if needle == "" {
		return func(string) bool { return true }
	}
	return func(name string) bool {
		return strings.Contains(foldName(name), needle)
	}
}
