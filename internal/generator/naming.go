package generator

import (
	"strings"
	"unicode"
)

// Names holds every casing of a target table name the generator needs. All
// of them derive from the same word split, so a table name and the target
// name derived from it resolve to the same artifact paths.
type Names struct {
	Display string // table name as shown in the console, e.g. "EF Detailed G"
	Pascal  string // target name, e.g. "EfDetailedG"
	Camel   string // client/config file stem, e.g. "efDetailedG"
	Kebab   string // route path, e.g. "ef-detailed-g"
	Snake   string // e.g. "ef_detailed_g"
}

// DeriveNames splits a table name into words and rebuilds it in each casing
// the artifact paths need. Non-alphanumeric runes act as separators, and a
// lower-to-upper or digit-to-upper transition starts a new word, so feeding
// a previously derived target name back in yields the same split.
func DeriveNames(tableName string) Names {
	words := splitWords(tableName)
	if len(words) == 0 {
		return Names{Display: strings.TrimSpace(tableName)}
	}

	titled := make([]string, len(words))
	lowered := make([]string, len(words))
	for i, w := range words {
		titled[i] = titleWord(w)
		lowered[i] = strings.ToLower(w)
	}

	pascal := strings.Join(titled, "")
	camel := strings.ToLower(titled[0]) + strings.Join(titled[1:], "")

	return Names{
		Display: strings.TrimSpace(tableName),
		Pascal:  pascal,
		Camel:   camel,
		Kebab:   strings.Join(lowered, "-"),
		Snake:   strings.Join(lowered, "_"),
	}
}

func splitWords(s string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	var prev rune
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
		prev = r
	}
	flush()
	return words
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
