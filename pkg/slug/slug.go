package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// fold maps accented letters and a few symbols common in product names to
// ASCII.
var fold = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"á", "a", "à", "a", "â", "a", "ä", "a",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o", "ö", "o",
	"ú", "u", "ù", "u", "û", "u", "ü", "u",
	"ñ", "n", "ç", "c",
	"♀", "-f", "♂", "-m",
	"&", " and ",
	"'", "", "’", "",
)

// Generate lowercases name, folds accents, and joins the alphanumeric runs
// with single hyphens: "Poké Ball" becomes "poke-ball" and "Nidoran♀"
// becomes "nidoran-f".
func Generate(name string) string {
	s := fold.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
