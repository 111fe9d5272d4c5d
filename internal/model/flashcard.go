// internal/model/flashcard.go
package model

// FlashcardKey names the collection holding flashcards.
const FlashcardKey = "flashcard_words"

// FlashcardStatus is the learning state of a card.
type FlashcardStatus string

const (
	StatusNotLearned FlashcardStatus = "not-learned"
	StatusLearning   FlashcardStatus = "learning"
	StatusLearned    FlashcardStatus = "learned"
)

func (s FlashcardStatus) Valid() bool {
	switch s {
	case StatusNotLearned, StatusLearning, StatusLearned:
		return true
	}
	return false
}

// FlashcardItem is a reviewable card built from a WordParse.
// Word is unique across the collection; only Status changes after creation.
type FlashcardItem struct {
	WordParse
	ID                 int64           `json:"id"`
	Pronunciation      string          `json:"pronunciation"`
	Example            string          `json:"example"`
	ExampleTranslation string          `json:"exampleTranslation"`
	Status             FlashcardStatus `json:"status"`
	ImageURL           string          `json:"imageUrl,omitempty"`
	AddedAt            string          `json:"addedAt"`
}

// Progress aggregates card statuses. Percentage is 0 for an empty collection.
type Progress struct {
	Total      int     `json:"total"`
	Learned    int     `json:"learned"`
	Learning   int     `json:"learning"`
	NotLearned int     `json:"notLearned"`
	Percentage float64 `json:"percentage"`
}
