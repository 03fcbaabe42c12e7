package quality

import "regexp"

var (
	upperRunRe    = regexp.MustCompile(`\p{Lu}{3,}`)
	symbolRunRe   = regexp.MustCompile(`[\p{P}\p{S}]{3,}`)
	spaceRunRe    = regexp.MustCompile(`\s{3,}`)
	sentenceEndRe = regexp.MustCompile(`[.!?]`)
	numberRe      = regexp.MustCompile(`\d+`)
	wordRe        = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// stopWords holds common English function words plus frequent Korean and
// Japanese particles that survive tokenisation as standalone words.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "and", "or", "but", "if", "then", "else", "of", "to", "in",
		"on", "at", "by", "for", "with", "about", "as", "into", "from", "up", "down",
		"is", "are", "was", "were", "be", "been", "being", "am", "do", "does", "did",
		"have", "has", "had", "it", "its", "this", "that", "these", "those", "there",
		"here", "he", "she", "they", "them", "we", "us", "you", "your", "our", "my",
		"me", "his", "her", "their", "i", "so", "no", "not", "can", "will", "would",
		"should", "could", "may", "might", "must", "just", "than", "too", "very",
		"all", "any", "some", "such", "what", "which", "who", "whom", "when", "where",
		"why", "how", "also", "more", "most",
		"은", "는", "이", "가", "을", "를", "에", "의", "와", "과", "도", "로", "으로",
		"그리고", "하지만", "그러나", "또는", "그", "저", "이것", "그것",
		"は", "が", "を", "に", "の", "と", "で", "も", "へ", "から", "まで", "です", "ます",
	} {
		stopWords[w] = struct{}{}
	}
}

func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}
