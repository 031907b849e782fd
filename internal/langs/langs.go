// Package langs normalizes the inconsistent language-code vocabularies used
// by external providers ("English", "eng", "en-US", "en_GB") into the
// primary subtags the editor's project model uses.
package langs

import "strings"

var byName = map[string]string{
	"english":    "en",
	"eng":        "en",
	"spanish":    "es",
	"espanol":    "es",
	"español":    "es",
	"spa":        "es",
	"french":     "fr",
	"francais":   "fr",
	"français":   "fr",
	"fra":        "fr",
	"fre":        "fr",
	"german":     "de",
	"deutsch":    "de",
	"deu":        "de",
	"ger":        "de",
	"italian":    "it",
	"ita":        "it",
	"portuguese": "pt",
	"por":        "pt",
	"dutch":      "nl",
	"nld":        "nl",
	"russian":    "ru",
	"rus":        "ru",
	"japanese":   "ja",
	"jpn":        "ja",
	"chinese":    "zh",
	"zho":        "zh",
	"chi":        "zh",
	"korean":     "ko",
	"kor":        "ko",
	"greek":      "el",
	"grc":        "el",
	"hebrew":     "he",
	"heb":        "he",
	"latin":      "la",
	"lat":        "la",
	"arabic":     "ar",
	"ara":        "ar",
	"finnish":    "fi",
	"fin":        "fi",
	"swedish":    "sv",
	"swe":        "sv",
	"polish":     "pl",
	"pol":        "pl",
	"ukrainian":  "uk",
	"ukr":        "uk",
}

// Normalize maps a provider language label to a primary subtag ("en", "es").
// Region suffixes are dropped ("en-US" -> "en"). Unrecognized values are
// lower-cased and returned as-is so unknown languages are preserved rather
// than lost.
func Normalize(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}

	if tag, ok := byName[s]; ok {
		return tag
	}

	// "en-US", "en_GB", "pt-br"
	for _, sep := range []string{"-", "_"} {
		if idx := strings.Index(s, sep); idx > 0 {
			s = s[:idx]
			break
		}
	}

	if tag, ok := byName[s]; ok {
		return tag
	}
	return s
}
