package service

import (
	"strings"
	"unicode"
)

// sentenceTerminators covers Latin and full-width CJK sentence punctuation.
const sentenceTerminators = ".!?。！？"

// SplitSentences splits text at sentence terminators and drops segments that
// are empty or whitespace only. Segments are returned trimmed.
func SplitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(sentenceTerminators, r)
	})
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimFunc(p, unicode.IsSpace); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// FindExample picks the first source sentence containing word (ignoring case)
// and the translated sentence at the same index. The two texts are assumed to
// be aligned sentence by sentence. Without a match it returns word and meaning.
func FindExample(word, meaning, sourceText, translatedText string) (example, translation string) {
	needle := strings.ToLower(word)
	sources := SplitSentences(sourceText)
	translations := SplitSentences(translatedText)

	for i, sentence := range sources {
		if !strings.Contains(strings.ToLower(sentence), needle) {
			continue
		}
		translation = meaning
		if i < len(translations) {
			translation = translations[i]
		}
		return sentence, translation
	}
	return word, meaning
}
