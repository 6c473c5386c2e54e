package scoring

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultJunkWords are quality markers and generic terms that say nothing
// about which work a title names.
var DefaultJunkWords = []string{ //nolint:gochecknoglobals // tunable default set
	"full", "movie", "film", "complete", "completo", "official", "clip", "scene",
	"hd", "fhd", "uhd", "hq", "4k", "1080p", "720p", "480p",
	"trailer", "teaser",
	"eng", "ita", "esp", "sub", "subs", "subtitles", "subtitled", "dub", "dubbed", "english",
}

// TokenSet is a set of normalized title tokens.
type TokenSet map[string]struct{}

// Sorted returns the members in ascending byte order.
func (t TokenSet) Sorted() []string {
	out := make([]string, 0, len(t))
	for tok := range t {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Joined returns the sorted members separated by single spaces.
func (t TokenSet) Joined() string {
	return strings.Join(t.Sorted(), " ")
}

// Intersect returns the sorted members of t also present in other.
func (t TokenSet) Intersect(other TokenSet) []string {
	common := make([]string, 0, len(t))
	for tok := range t {
		if _, ok := other[tok]; ok {
			common = append(common, tok)
		}
	}
	sort.Strings(common)
	return common
}

// Normalizer turns titles into comparable token sets.
type Normalizer struct {
	junk map[string]struct{}
	fold bool
}

// NewNormalizer creates a normalizer dropping the given junk words. A nil
// or empty list selects DefaultJunkWords.
func NewNormalizer(junk []string, foldDiacritics bool) *Normalizer {
	if len(junk) == 0 {
		junk = DefaultJunkWords
	}
	n := &Normalizer{junk: make(map[string]struct{}, len(junk)), fold: foldDiacritics}
	for _, w := range junk {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			n.junk[w] = struct{}{}
		}
	}
	return n
}

// Tokens lowercases title, removes year tokens and punctuation, splits on
// whitespace and drops one-character and junk tokens.
func (n *Normalizer) Tokens(title string) TokenSet {
	if n.fold {
		title = foldDiacritics(title)
	}
	text := StripYears(strings.ToLower(title))
	text = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, text)

	out := make(TokenSet)
	for _, w := range strings.Fields(text) {
		if len(w) <= 1 {
			continue
		}
		if _, junk := n.junk[w]; junk {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// ExtractYear returns the first standalone year in [1800, 2099] found in
// text, or 0.
func ExtractYear(text string) int {
	rs := []rune(text)
	for i := 0; i+yearLen <= len(rs); i++ {
		if isYearAt(rs, i) {
			return (int(rs[i]-'0')*10+int(rs[i+1]-'0'))*100 + int(rs[i+2]-'0')*10 + int(rs[i+3]-'0')
		}
	}
	return 0
}

// StripYears removes every standalone year in [1800, 2099] from text.
func StripYears(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(rs); {
		if i+yearLen <= len(rs) && isYearAt(rs, i) {
			i += yearLen
			continue
		}
		b.WriteRune(rs[i])
		i++
	}
	return b.String()
}

const yearLen = 4

// isYearAt matches a word-bounded (18|19|20)dd at rs[i:].
func isYearAt(rs []rune, i int) bool {
	if i > 0 && isWordRune(rs[i-1]) {
		return false
	}
	if i+yearLen < len(rs) && isWordRune(rs[i+yearLen]) {
		return false
	}
	for k := 0; k < yearLen; k++ {
		if rs[i+k] < '0' || rs[i+k] > '9' {
			return false
		}
	}
	century := rs[i : i+2]
	return (century[0] == '1' && (century[1] == '8' || century[1] == '9')) ||
		(century[0] == '2' && century[1] == '0')
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// foldDiacritics maps "Häxan" to "Haxan". The input is returned unchanged
// if the transform fails.
func foldDiacritics(s string) string {
	// Chains carry buffers, so one is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
