// internal/model/storage.go
package model

import "time"

// StorageType is the `type` query parameter of /api/storage.
type StorageType string

const (
	StorageTypeHistory   StorageType = "history"
	StorageTypeFlashcard StorageType = "flashcard"
)

// StorageAction is the `action` query parameter of /api/storage.
type StorageAction string

const (
	ActionGetAll       StorageAction = "getAll"
	ActionAdd          StorageAction = "add"
	ActionAddBatch     StorageAction = "addBatch"
	ActionDelete       StorageAction = "delete"
	ActionClear        StorageAction = "clear"
	ActionUpdateStatus StorageAction = "updateStatus"
)

// KVSlot is one serialized collection in a relational key-value table.
type KVSlot struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (KVSlot) TableName() string {
	return "kv_slots"
}

// AddHistoryRequest is the body of type=history&action=add.
type AddHistoryRequest struct {
	Item *NewHistoryItem `json:"item" validate:"required"`
}

// DeleteHistoryRequest removes the item with ID. A missing or unknown ID deletes nothing.
type DeleteHistoryRequest struct {
	ID string `json:"id"`
}

type AddFlashcardRequest struct {
	WordParse          *WordParse `json:"wordParse" validate:"required"`
	Example            string     `json:"example"`
	ExampleTranslation string     `json:"exampleTranslation"`
}

type AddFlashcardBatchRequest struct {
	WordParses         []WordParse `json:"wordParses"`
	IndonesianText     string      `json:"indonesianText"`
	ChineseTranslation string      `json:"chineseTranslation"`
}

// UpdateFlashcardStatusRequest is the body of type=flashcard&action=updateStatus.
type UpdateFlashcardStatusRequest struct {
	ID     int64           `json:"id" validate:"required"`
	Status FlashcardStatus `json:"status" validate:"required,oneof=not-learned learning learned"`
}

type DeleteFlashcardRequest struct {
	ID int64 `json:"id" validate:"required"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
