// Package postprocess strips the wrapping that chat models put around a
// translation: reasoning blocks, answer labels, markdown fences and outer
// quotes. Ollama and OpenAI-compatible adapters run every reply through Clean.
package postprocess

import (
	"regexp"
	"strings"
)

var (
	// Closed reasoning blocks, then a trailing block the model never closed.
	reasoningRe      = regexp.MustCompile(`(?is)<(think|thinking|reasoning|reflection)>.*?</(think|thinking|reasoning|reflection)>`)
	openReasoningRe  = regexp.MustCompile(`(?is)<(think|thinking|reasoning|reflection)>.*$`)
	fenceRe          = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n(.*?)\\n?```$")
	answerLabelRe    = regexp.MustCompile(`(?i)^(?:(?:sure|certainly|of course)[,.!]?\s+)?(?:here(?:'s| is)\s+)?(?:the\s+)?(?:english\s+)?(?:translation|translated text|english)\s*(?:is)?\s*:\s*`)
	cjkAnswerLabelRe = regexp.MustCompile(`^(?:번역|영어 번역|翻訳|英訳)\s*[:：]\s*`)
)

var quotePairs = [][2]rune{
	{'"', '"'},
	{'\'', '\''},
	{'“', '”'},
	{'‘', '’'},
	{'「', '」'},
	{'『', '』'},
}

// Clean returns the bare translation contained in a model reply.
func Clean(text string) string {
	text = reasoningRe.ReplaceAllString(text, "")
	text = openReasoningRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	text = answerLabelRe.ReplaceAllString(text, "")
	text = cjkAnswerLabelRe.ReplaceAllString(text, "")

	return unquote(strings.TrimSpace(text))
}

func unquote(text string) string {
	runes := []rune(text)
	if len(runes) < 2 {
		return text
	}
	first, last := runes[0], runes[len(runes)-1]
	for _, p := range quotePairs {
		if first == p[0] && last == p[1] {
			inner := string(runes[1 : len(runes)-1])
			// Leave "a" and "b" alone: the quotes belong to the content.
			if strings.ContainsRune(inner, p[1]) {
				return text
			}
			return strings.TrimSpace(inner)
		}
	}
	return text
}
