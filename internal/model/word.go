// internal/model/word.go
package model

// WordParse is one marked vocabulary item returned by the recognizer.
// None of the fields is validated; empty strings are allowed.
type WordParse struct {
	Word         string `json:"word"`
	Meaning      string `json:"meaning"`
	PartOfSpeech string `json:"partOfSpeech"`
	Root         string `json:"root"`
}

// RecognitionResult is the normalized reply of the recognizer and the body of
// a successful POST /api/translate.
type RecognitionResult struct {
	IndonesianText     string      `json:"indonesianText"`
	ChineseTranslation string      `json:"chineseTranslation"`
	WordParses         []WordParse `json:"wordParses"`
}

// TranslateRequest is the body of POST /api/translate.
type TranslateRequest struct {
	ImageBase64 string `json:"imageBase64" validate:"required"`
}
