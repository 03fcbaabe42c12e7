package translator

import (
	"strings"

	"golang.org/x/text/language"
)

// baseLang reduces codes such as "EN-US", "en_GB" or "KO" to a lower-case
// ISO 639-1 base ("en", "ko"). Unparseable codes are lower-cased as-is.
func baseLang(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, "auto") {
		return ""
	}
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}

// langTag is baseLang as a language.Tag, the form the Google client expects.
func langTag(code string) (language.Tag, bool) {
	b := baseLang(code)
	if b == "" {
		return language.Und, false
	}
	tag, err := language.Parse(b)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

func languageName(code string) string {
	switch baseLang(code) {
	case "en":
		return "English"
	case "ko":
		return "Korean"
	case "ja":
		return "Japanese"
	case "":
		return "the detected language"
	default:
		return code
	}
}
