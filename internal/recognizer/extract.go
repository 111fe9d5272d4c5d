package recognizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"kata_lens/internal/model"
)

var (
	fencedJSON = regexp.MustCompile("(?s)```json\\n?(.*?)\\n?```")
	braceSpan  = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractFencedJSON returns the inside of the first ```json fenced block.
func ExtractFencedJSON(text string) (string, bool) {
	m := fencedJSON.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractBraceSpan returns the text from the first '{' to the last '}'.
func ExtractBraceSpan(text string) (string, bool) {
	span := braceSpan.FindString(text)
	return span, span != ""
}

// ExtractJSON tries the fenced block first, then the brace span, and falls
// back to the whole text. The result is trimmed.
func ExtractJSON(text string) string {
	if inner, ok := ExtractFencedJSON(text); ok {
		return strings.TrimSpace(inner)
	}
	if span, ok := ExtractBraceSpan(text); ok {
		return strings.TrimSpace(span)
	}
	return strings.TrimSpace(text)
}

// ParseResult extracts and validates the model's reply. Both text fields must
// be non-empty. wordParses that is missing or not an array becomes empty, and
// elements that are not word objects are dropped.
func ParseResult(content string) (*model.RecognitionResult, error) {
	var raw struct {
		IndonesianText     string          `json:"indonesianText"`
		ChineseTranslation string          `json:"chineseTranslation"`
		WordParses         json.RawMessage `json:"wordParses"`
	}
	if err := json.Unmarshal([]byte(ExtractJSON(content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if raw.IndonesianText == "" || raw.ChineseTranslation == "" {
		return nil, fmt.Errorf("%w: indonesianText and chineseTranslation are required", ErrInvalidFormat)
	}
	return &model.RecognitionResult{
		IndonesianText:     raw.IndonesianText,
		ChineseTranslation: raw.ChineseTranslation,
		WordParses:         coerceWordParses(raw.WordParses),
	}, nil
}

func coerceWordParses(raw json.RawMessage) []model.WordParse {
	parses := []model.WordParse{}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		return parses
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return parses
	}
	for _, elem := range elems {
		if !bytes.HasPrefix(bytes.TrimSpace(elem), []byte("{")) {
			continue
		}
		var wp model.WordParse
		if err := json.Unmarshal(elem, &wp); err != nil {
			continue
		}
		parses = append(parses, wp)
	}
	return parses
}
