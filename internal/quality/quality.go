// Package quality scores a translated text against its source along three
// heuristic dimensions (completeness, fluency, accuracy) and folds them into an
// overall score, a letter grade, and human-readable issues and suggestions.
//
// Every function here is pure: identical inputs always produce identical
// reports, and no input makes a scorer fail.
package quality

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Weights of the overall score.
const (
	fluencyWeight      = 0.4
	accuracyWeight     = 0.4
	completenessWeight = 0.2
)

// Thresholds below which an issue is reported.
const (
	minCompleteness = 0.8
	minFluency      = 0.7
	minAccuracy     = 0.7

	// maxLowercaseSentenceShare is the share of sentences allowed to start
	// without a capital letter before a grammar suggestion is made.
	maxLowercaseSentenceShare = 0.3
)

const (
	IssueTooShort   = "translation is too short compared to the source"
	IssueUnnatural  = "translation may read unnaturally"
	IssueDivergence = "translated meaning may diverge from the source"

	SuggestCompleteness = "check the translation for omitted sentences or details"
	SuggestFluency      = "rephrase awkward passages so they read like native English"
	SuggestAccuracy     = "verify that key terms, names and numbers carry over from the source"
	SuggestGrammar      = "fix double spaces and start each sentence with a capital letter"
)

// Report is the outcome of a single quality check.
type Report struct {
	Fluency      float64  `json:"fluency"`
	Accuracy     float64  `json:"accuracy"`
	Completeness float64  `json:"completeness"`
	Overall      float64  `json:"overall"`
	Issues       []string `json:"issues"`
	Suggestions  []string `json:"suggestions"`
}

// Grade returns the letter grade of the overall score.
func (r Report) Grade() string {
	return Grade(r.Overall)
}

// Checker scores (original, translated) pairs. It holds no state; the zero
// value is ready to use.
type Checker struct{}

func NewChecker() *Checker {
	return &Checker{}
}

// Check scores translated against original. hint is the free-text context the
// request was translated with; it is accepted so callers can pass it through,
// and no scorer reads it.
func (c *Checker) Check(original, translated string, hint ...string) Report {
	rep := Report{
		Completeness: Completeness(original, translated),
		Fluency:      Fluency(translated),
		Accuracy:     Accuracy(original, translated),
		Issues:       []string{},
		Suggestions:  []string{},
	}
	rep.Overall = Overall(rep.Fluency, rep.Accuracy, rep.Completeness)

	if rep.Completeness < minCompleteness {
		rep.Issues = append(rep.Issues, IssueTooShort)
		rep.Suggestions = append(rep.Suggestions, SuggestCompleteness)
	}
	if rep.Fluency < minFluency {
		rep.Issues = append(rep.Issues, IssueUnnatural)
		rep.Suggestions = append(rep.Suggestions, SuggestFluency)
	}
	if rep.Accuracy < minAccuracy {
		rep.Issues = append(rep.Issues, IssueDivergence)
		rep.Suggestions = append(rep.Suggestions, SuggestAccuracy)
	}
	if needsGrammarPass(translated) {
		rep.Suggestions = append(rep.Suggestions, SuggestGrammar)
	}

	return rep
}

// Overall combines the three dimensions into a single score.
func Overall(fluency, accuracy, completeness float64) float64 {
	return fluency*fluencyWeight + accuracy*accuracyWeight + completeness*completenessWeight
}

// Grade buckets an overall score into A+, A, B, C, D or F.
func Grade(overall float64) string {
	switch {
	case overall >= 0.9:
		return "A+"
	case overall >= 0.8:
		return "A"
	case overall >= 0.7:
		return "B"
	case overall >= 0.6:
		return "C"
	case overall >= 0.5:
		return "D"
	default:
		return "F"
	}
}

// Completeness compares rune lengths. Translations between half and one and a
// half times the source length score 1; shorter ones fall linearly to 0 and
// longer ones lose 0.2 per extra source length.
func Completeness(original, translated string) float64 {
	origLen := utf8.RuneCountInString(original)
	if origLen == 0 {
		return 1
	}
	ratio := float64(utf8.RuneCountInString(translated)) / float64(origLen)

	switch {
	case ratio >= 0.5 && ratio <= 1.5:
		return 1
	case ratio < 0.5:
		return ratio * 2
	default:
		return clamp(1 - (ratio-1.5)*0.2)
	}
}

// Fluency penalises shouting, symbol runs, whitespace runs and sentences
// that are unusually short or long on average.
func Fluency(translated string) float64 {
	score := 1.0

	if upperRunRe.MatchString(translated) {
		score -= 0.1
	}
	if symbolRunRe.MatchString(translated) {
		score -= 0.1
	}
	if spaceRunRe.MatchString(translated) {
		score -= 0.05
	}

	if avg, ok := averageSentenceLength(translated); ok {
		if avg < 10 {
			score -= 0.1
		} else if avg > 200 {
			score -= 0.05
		}
	}

	return clamp(score)
}

func averageSentenceLength(text string) (float64, bool) {
	parts := sentenceEndRe.Split(text, -1)
	total, n := 0, 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		total += utf8.RuneCountInString(p)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return float64(total) / float64(n), true
}

// Accuracy measures keyword and number overlap between source and
// translation.
func Accuracy(original, translated string) float64 {
	origKeywords := Keywords(original)
	keywordRatio := 1.0
	if len(origKeywords) > 0 {
		transKeywords := Keywords(translated)
		matched := 0
		for _, ow := range origKeywords {
			for _, tk := range transKeywords {
				if strings.Contains(ow, tk) || strings.Contains(tk, ow) {
					matched++
					break
				}
			}
		}
		keywordRatio = float64(matched) / float64(len(origKeywords))
	}

	score := 1.0*0.5 + keywordRatio*0.5

	if origNumbers := len(numberRe.FindAllString(original, -1)); origNumbers > 0 {
		transNumbers := len(numberRe.FindAllString(translated, -1))
		numberRatio := float64(transNumbers) / float64(origNumbers)
		if numberRatio > 1 {
			numberRatio = 1
		}
		score = score*0.7 + numberRatio*0.3
	}

	return clamp(score)
}

const maxKeywords = 10

// Keywords returns up to ten lower-cased words of at least two runes, ranked
// by frequency with ties kept in order of first appearance. Stop words are
// skipped.
func Keywords(text string) []string {
	freq := make(map[string]int)
	var order []string

	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(w) < 2 || isStopWord(w) {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

// needsGrammarPass reports double spaces, or too many sentences (split on
// ". ") that do not start with an upper-case letter.
func needsGrammarPass(translated string) bool {
	if strings.Contains(translated, "  ") {
		return true
	}

	total, lower := 0, 0
	for _, s := range strings.Split(translated, ". ") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		total++
		first, _ := utf8.DecodeRuneInString(s)
		if !unicode.IsUpper(first) {
			lower++
		}
	}
	if total == 0 {
		return false
	}
	return float64(lower)/float64(total) > maxLowercaseSentenceShare
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
