package query

import (
	"strings"

	"github.com/okian/vidmatch/internal/domain/model"
)

// Locale is one supported search language with its localized
// "full movie" phrasings.
type Locale struct {
	Code  string // ISO 639-1
	Name  string // English name, as catalog language labels use it
	Short string // "full movie"
	Long  string // "full movie" followed by the language's own name
}

// Phrase returns the phrasing for variant v.
func (l Locale) Phrase(v model.Variant) string {
	if v == model.VariantLong {
		return l.Long
	}
	return l.Short
}

var locales = []Locale{ //nolint:gochecknoglobals // read-only table
	{"en", "English", "full movie", "full movie english"},
	{"es", "Spanish", "película completa", "película completa en español"},
	{"fr", "French", "film complet", "film complet en français"},
	{"de", "German", "ganzer film", "ganzer film deutsch"},
	{"it", "Italian", "film completo", "film completo in italiano"},
	{"pt", "Portuguese", "filme completo", "filme completo em português"},
	{"ru", "Russian", "полный фильм", "полный фильм на русском"},
	{"zh", "Chinese", "完整电影", "完整电影 中文"},
	{"ja", "Japanese", "フルムービー", "フルムービー 日本語"},
	{"ko", "Korean", "전체 영화", "전체 영화 한국어"},
	{"ar", "Arabic", "فيلم كامل", "فيلم كامل بالعربي"},
	{"hi", "Hindi", "पूरी फिल्म", "पूरी फिल्म हिंदी में"},
	{"bn", "Bengali", "পূর্ণ চলচ্চিত্র", "পূর্ণ চলচ্চিত্র বাংলা"},
	{"tr", "Turkish", "tam film", "tam film türkçe"},
	{"nl", "Dutch", "volledige film", "volledige film nederlands"},
	{"sv", "Swedish", "hela filmen", "hela filmen på svenska"},
	{"pl", "Polish", "cały film", "cały film po polsku"},
	{"uk", "Ukrainian", "повний фільм", "повний фільм українською"},
	{"cs", "Czech", "celý film", "celý film česky"},
	{"ro", "Romanian", "film complet", "film complet în română"},
	{"el", "Greek", "ολόκληρη ταινία", "ολόκληρη ταινία ελληνικά"},
	{"he", "Hebrew", "סרט מלא", "סרט מלא בעברית"},
	{"id", "Indonesian", "film lengkap", "film lengkap bahasa indonesia"},
	{"vi", "Vietnamese", "phim đầy đủ", "phim đầy đủ tiếng việt"},
	{"th", "Thai", "หนังเต็มเรื่อง", "หนังเต็มเรื่อง พากย์ไทย"},
	{"fa", "Persian", "فیلم کامل", "فیلم کامل فارسی"},
	{"bg", "Bulgarian", "целият филм", "целият филм на български"},
	{"hr", "Croatian", "cijeli film", "cijeli film na hrvatskom"},
	{"da", "Danish", "hele filmen", "hele filmen på dansk"},
	{"et", "Estonian", "täispikk film", "täispikk film eesti keeles"},
	{"fi", "Finnish", "koko elokuva", "koko elokuva suomeksi"},
	{"hu", "Hungarian", "teljes film", "teljes film magyarul"},
	{"ga", "Irish", "scannán iomlán", "scannán iomlán as gaeilge"},
	{"lv", "Latvian", "pilna filma", "pilna filma latviski"},
	{"lt", "Lithuanian", "pilnas filmas", "pilnas filmas lietuviškai"},
	{"mt", "Maltese", "film sħiħ", "film sħiħ bil-malti"},
	{"sk", "Slovak", "celý film", "celý film po slovensky"},
	{"sl", "Slovenian", "cel film", "cel film v slovenščini"},
}

var (
	byCode = make(map[string]Locale, len(locales)) //nolint:gochecknoglobals // index built at init
	byName = make(map[string]Locale, len(locales)) //nolint:gochecknoglobals // index built at init
)

func init() { //nolint:gochecknoinits // index construction
	for _, l := range locales {
		byCode[l.Code] = l
		byName[strings.ToLower(l.Name)] = l
	}
}

// DefaultLocales returns the full ordered locale table.
func DefaultLocales() []Locale {
	out := make([]Locale, len(locales))
	copy(out, locales)
	return out
}

// LookupLocale resolves an ISO 639-1 code or an English language name
// ("Italian") to a supported locale.
func LookupLocale(codeOrName string) (Locale, bool) {
	key := strings.ToLower(strings.TrimSpace(codeOrName))
	if key == "" {
		return Locale{}, false
	}
	if l, ok := byCode[key]; ok {
		return l, true
	}
	l, ok := byName[key]
	return l, ok
}
