package narrator

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Softer words substituted into spoken lines when the content rating asks
// for it.
var softer = map[string]string{
	"fuck":     "fudge",
	"shit":     "shoot",
	"damn":     "dang",
	"hell":     "heck",
	"ass":      "butt",
	"bitch":    "jerk",
	"bastard":  "jerk",
	"crap":     "crud",
	"piss":     "ticked",
	"dick":     "jerk",
	"goddamn":  "gosh-dang",
	"asshole":  "jerk",
	"bullshit": "baloney",
	"prick":    "jerk",
}

// SpeechFilter softens profanity in what characters say.
type SpeechFilter struct {
	pattern *regexp.Regexp
	title   cases.Caser
}

// NewSpeechFilter compiles the word list into a single matcher.
func NewSpeechFilter() *SpeechFilter {
	words := make([]string, 0, len(softer))
	for w := range softer {
		words = append(words, regexp.QuoteMeta(w))
	}
	slices.SortFunc(words, func(a, b string) int { return len(b) - len(a) })
	return &SpeechFilter{
		pattern: regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`),
		title:   cases.Title(language.English),
	}
}

// Filter replaces every matched word, keeping the original's casing.
func (f *SpeechFilter) Filter(text string) string {
	return f.pattern.ReplaceAllStringFunc(text, func(match string) string {
		return f.matchCase(match, softer[strings.ToLower(match)])
	})
}

func (f *SpeechFilter) matchCase(original, replacement string) string {
	switch {
	case strings.ToUpper(original) == original:
		return strings.ToUpper(replacement)
	case strings.ToLower(original) == original:
		return replacement
	case f.title.String(strings.ToLower(original)) == original:
		return f.title.String(replacement)
	}
	out := []rune(replacement)
	orig := []rune(original)
	for i := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(out[i])
		}
	}
	return string(out)
}

// FiltersRating reports whether speech should be softened for a content
// rating.
func FiltersRating(rating string) bool {
	switch strings.ToUpper(strings.TrimSpace(rating)) {
	case "G", "PG", "PG13", "PG-13":
		return true
	}
	return false
}
