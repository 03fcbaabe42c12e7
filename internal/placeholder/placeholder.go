// Package placeholder shields the parts of a content field that must survive
// translation verbatim (template variables, URLs, HTML tags and code) behind
// numbered [PHn] markers, and puts them back afterwards.
package placeholder

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reFencedCode = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`[^`\n]+`")
	reURL        = regexp.MustCompile(`https?://[^\s<>"']+`)
	reMustache   = regexp.MustCompile(`\{\{[^{}]+\}\}`)
	reBraceVar   = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_.]*\}`)
	reHTMLTag    = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
)

// patterns run in order; earlier ones win because later ones only see what
// is left.
var patterns = []*regexp.Regexp{reFencedCode, reInlineCode, reURL, reMustache, reBraceVar, reHTMLTag}

// Protect returns text with every protected span replaced by a marker, plus
// the spans in marker order.
func Protect(text string) (string, []string) {
	var spans []string
	for _, re := range patterns {
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			spans = append(spans, match)
			return marker(len(spans) - 1)
		})
	}
	return text, spans
}

// Restore puts spans back. A span may itself hold the marker of an earlier
// span (a URL inside a tag), so markers are resolved from the last one down.
// Markers with an unknown index are left as they are.
func Restore(text string, spans []string) string {
	for i := len(spans) - 1; i >= 0; i-- {
		text = strings.ReplaceAll(text, marker(i), spans[i])
	}
	return text
}

// Missing lists the marker indices that Restore would not reach from text.
func Missing(text string, spans []string) []int {
	present := make([]bool, len(spans))
	for i := len(spans) - 1; i >= 0; i-- {
		m := marker(i)
		present[i] = strings.Contains(text, m)
		for j := i + 1; j < len(spans) && !present[i]; j++ {
			present[i] = present[j] && strings.Contains(spans[j], m)
		}
	}

	var missing []int
	for i, ok := range present {
		if !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

func marker(i int) string {
	return "[PH" + strconv.Itoa(i) + "]"
}

// InstructionHint is appended to LLM prompts.
func InstructionHint() string {
	return "Leave every [PHn] marker exactly where it is; do not translate, move or remove it."
}
