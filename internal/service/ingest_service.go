package service

import (
	"context"
	"fmt"
	"log/slog"

	"kata_lens/internal/middleware"
	"kata_lens/internal/model"
	"kata_lens/internal/recognizer"
)

// IngestResult is what one scan produced.
type IngestResult struct {
	Recognition *model.RecognitionResult `json:"recognition"`
	History     *model.HistoryItem       `json:"history"`
	Flashcards  []*model.FlashcardItem   `json:"flashcards"`
}

// IngestService runs a recognition and stores its result.
type IngestService interface {
	// Ingest records result as a history item and, when it carries words,
	// adds them as flashcards.
	Ingest(ctx context.Context, result *model.RecognitionResult, imageURL string) (*IngestResult, error)
	RecognizeAndIngest(ctx context.Context, imageData string) (*IngestResult, error)
}

type ingestService struct {
	recognizer recognizer.Recognizer
	history    HistoryService
	flashcards FlashcardService
	logger     *slog.Logger
}

// NewIngestService creates a new IngestService.
func NewIngestService(rec recognizer.Recognizer, history HistoryService, flashcards FlashcardService, logger *slog.Logger) IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ingestService{
		recognizer: rec,
		history:    history,
		flashcards: flashcards,
		logger:     logger,
	}
}

// Ingest fails when the history item cannot be stored. A flashcard failure
// after that returns the partial result together with the error.
func (s *ingestService) Ingest(ctx context.Context, result *model.RecognitionResult, imageURL string) (*IngestResult, error) {
	logger := middleware.GetLogger(ctx)
	if result == nil {
		return nil, fmt.Errorf("ingest: %w", model.ErrInvalidInput)
	}

	item, err := s.history.Add(ctx, &model.NewHistoryItem{
		Indonesian: result.IndonesianText,
		Chinese:    result.ChineseTranslation,
		WordParses: result.WordParses,
		ImageURL:   imageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}
	out := &IngestResult{Recognition: result, History: item, Flashcards: []*model.FlashcardItem{}}

	if len(result.WordParses) == 0 {
		logger.Info("Recognition ingested without words", slog.String("history_id", item.ID))
		return out, nil
	}

	cards, err := s.flashcards.AddBatch(ctx, result.WordParses, result.IndonesianText, result.ChineseTranslation)
	if err != nil {
		logger.Warn("History saved but flashcards failed", slog.String("history_id", item.ID), slog.Any("error", err))
		return out, fmt.Errorf("save flashcards: %w", err)
	}
	out.Flashcards = cards
	logger.Info("Recognition ingested", slog.String("history_id", item.ID), slog.Int("flashcards", len(cards)))
	return out, nil
}

func (s *ingestService) RecognizeAndIngest(ctx context.Context, imageData string) (*IngestResult, error) {
	if s.recognizer == nil {
		return nil, fmt.Errorf("recognize: %w", recognizer.ErrMissingCredential)
	}
	result, err := s.recognizer.Recognize(ctx, imageData)
	if err != nil {
		return nil, err
	}
	// history keeps no image data
	return s.Ingest(ctx, result, "")
}
