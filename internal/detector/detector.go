// Package detector classifies short content fields as Korean, Japanese or
// English using character-class ratios. No model is loaded and every call is
// independent.
package detector

import (
	"strings"
	"unicode"
)

type Language string

const (
	Korean   Language = "ko"
	Japanese Language = "ja"
	English  Language = "en"
	Unknown  Language = "unknown"
)

// Result is the detected language together with the detector's own certainty.
type Result struct {
	Language   Language `json:"language"`
	Confidence float64  `json:"confidence"`
}

const (
	koreanThreshold   = 0.3
	japaneseThreshold = 0.3
	englishThreshold  = 0.5

	// englishFallbackLetters is the minimum number of ASCII letters needed to
	// call mixed text English when no ratio wins outright.
	englishFallbackLetters = 10

	longTextRunes = 100
)

type Detector struct{}

func New() *Detector {
	return &Detector{}
}

type counts struct {
	korean   int
	japanese int
	english  int
	total    int

	hasKoreanPattern   bool
	hasJapanesePattern bool
}

func count(text string) counts {
	var c counts
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		c.total++
		switch {
		case isHangulSyllable(r):
			c.korean++
			c.hasKoreanPattern = true
		case isKana(r):
			c.japanese++
			c.hasJapanesePattern = true
		case isASCIILetter(r):
			c.english++
		case isHangulJamo(r):
			c.hasKoreanPattern = true
		case unicode.Is(unicode.Han, r):
			c.hasJapanesePattern = true
		}
	}
	return c
}

// Detect classifies a single text. Empty or whitespace-only input yields
// Unknown with zero confidence.
func (d *Detector) Detect(text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Language: Unknown}
	}

	c := count(text)
	if c.total == 0 {
		return Result{Language: Unknown}
	}

	total := float64(c.total)
	rKo := float64(c.korean) / total
	rJa := float64(c.japanese) / total
	rEn := float64(c.english) / total

	var lang Language
	var ratio float64
	switch {
	case rKo > koreanThreshold:
		lang, ratio = Korean, rKo
	case rJa > japaneseThreshold:
		lang, ratio = Japanese, rJa
	case rEn > englishThreshold:
		lang, ratio = English, rEn
	case c.hasKoreanPattern && c.korean > c.japanese:
		lang, ratio = Korean, rKo
	case c.hasJapanesePattern:
		lang, ratio = Japanese, rJa
	case c.english > englishFallbackLetters:
		lang, ratio = English, rEn
	default:
		return Result{Language: Unknown}
	}

	return Result{Language: lang, Confidence: confidence(lang, ratio, len([]rune(text)))}
}

func confidence(lang Language, ratio float64, length int) float64 {
	conf := 0.7
	switch {
	case ratio > 0.7:
		conf = 0.95
	case ratio > 0.5:
		conf = 0.85
	case ratio > 0.3:
		conf = 0.75
	}
	// ASCII letters are shared with romanised Korean and Japanese, so a pure
	// Latin-letter ratio never reaches the top tier.
	if lang == English && conf > 0.85 {
		conf = 0.85
	}
	if length > longTextRunes {
		conf += 0.1
		if conf > 0.98 {
			conf = 0.98
		}
	}
	return conf
}

// DetectMany aggregates per-text detections. Unknown results are discarded;
// the most frequent remaining language wins, ties going to the language seen
// first. The confidence is the mean over texts classified as the winner.
func (d *Detector) DetectMany(texts []string) Result {
	type tally struct {
		n   int
		sum float64
	}
	tallies := make(map[Language]*tally)
	var order []Language

	for _, text := range texts {
		res := d.Detect(text)
		if res.Language == Unknown {
			continue
		}
		t, ok := tallies[res.Language]
		if !ok {
			t = &tally{}
			tallies[res.Language] = t
			order = append(order, res.Language)
		}
		t.n++
		t.sum += res.Confidence
	}

	if len(order) == 0 {
		return Result{Language: Unknown}
	}

	best := order[0]
	for _, lang := range order[1:] {
		if tallies[lang].n > tallies[best].n {
			best = lang
		}
	}

	t := tallies[best]
	return Result{Language: best, Confidence: t.sum / float64(t.n)}
}

func isHangulSyllable(r rune) bool { return r >= 0xAC00 && r <= 0xD7A3 }

func isHangulJamo(r rune) bool {
	return (r >= 0x1100 && r <= 0x11FF) || (r >= 0x3130 && r <= 0x318F)
}

// isKana covers Hiragana and Katakana, including the prolonged sound mark.
func isKana(r rune) bool { return r >= 0x3040 && r <= 0x30FF }

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
