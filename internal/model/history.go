// internal/model/history.go
package model

// HistoryKey names the collection holding translation history.
const HistoryKey = "translation_history"

// HistoryItem is one completed translation. Never mutated after creation.
type HistoryItem struct {
	ID         string      `json:"id"`
	Timestamp  string      `json:"timestamp"`
	Indonesian string      `json:"indonesian"`
	Chinese    string      `json:"chinese"`
	WordParses []WordParse `json:"wordParses"`
	ImageURL   string      `json:"imageUrl,omitempty"`
}

// NewHistoryItem is a HistoryItem before id and timestamp are assigned.
type NewHistoryItem struct {
	Indonesian string      `json:"indonesian"`
	Chinese    string      `json:"chinese"`
	WordParses []WordParse `json:"wordParses"`
	ImageURL   string      `json:"imageUrl,omitempty"`
}

// HistoryPage is one page of (optionally filtered) history.
type HistoryPage struct {
	Data       []*HistoryItem `json:"data"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalCount int            `json:"totalCount"`
	TotalPages int            `json:"totalPages"`
}
