package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"kata_lens/internal/middleware"
	"kata_lens/internal/model"
	"kata_lens/internal/repository"
)

// AddedAtLayout matches JavaScript's Date.prototype.toISOString.
const AddedAtLayout = "2006-01-02T15:04:05.000Z"

// FlashcardService manages the flashcard deck and its learning status.
type FlashcardService interface {
	GetAll(ctx context.Context) ([]*model.FlashcardItem, error)
	Add(ctx context.Context, wp model.WordParse, example, exampleTranslation string) (*model.FlashcardItem, error)
	AddBatch(ctx context.Context, wordParses []model.WordParse, sourceText, translatedText string) ([]*model.FlashcardItem, error)
	UpdateStatus(ctx context.Context, id int64, status model.FlashcardStatus) error
	Delete(ctx context.Context, id int64) error
	GetProgress(ctx context.Context) (*model.Progress, error)
	ReviewQueue(ctx context.Context) ([]*model.FlashcardItem, error)
	ToggleLearned(ctx context.Context, id int64) (model.FlashcardStatus, error)
}

type flashcardService struct {
	cards  *repository.Collection[*model.FlashcardItem]
	now    func() time.Time
	logger *slog.Logger
}

// NewFlashcardService keeps flashcards in store under model.FlashcardKey.
func NewFlashcardService(store repository.KVStore, logger *slog.Logger) FlashcardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &flashcardService{
		cards:  repository.NewCollection[*model.FlashcardItem](store, model.FlashcardKey),
		now:    time.Now,
		logger: logger,
	}
}

func (s *flashcardService) GetAll(ctx context.Context) ([]*model.FlashcardItem, error) {
	return s.cards.ReadAll(ctx)
}

func (s *flashcardService) loadForWrite(ctx context.Context, logger *slog.Logger) ([]*model.FlashcardItem, error) {
	cards, err := s.cards.ReadAll(ctx)
	if err != nil {
		if errors.Is(err, model.ErrCorruptData) {
			logger.Warn("Flashcard collection is corrupt, starting over", slog.String("key", s.cards.Key()), slog.Any("error", err))
			return []*model.FlashcardItem{}, nil
		}
		logger.Error("Failed to read flashcards", slog.Any("error", err))
		return nil, err
	}
	return cards, nil
}

// newCard builds a not-learned card. The id is milliseconds since the epoch
// scaled by 1000 plus a random suffix; collisions are possible but unlikely.
func (s *flashcardService) newCard(wp model.WordParse, example, exampleTranslation string) *model.FlashcardItem {
	now := s.now()
	return &model.FlashcardItem{
		WordParse:          wp,
		ID:                 now.UnixMilli()*1000 + rand.Int63n(1000),
		Pronunciation:      "/" + wp.Word + "/",
		Example:            example,
		ExampleTranslation: exampleTranslation,
		Status:             model.StatusNotLearned,
		AddedAt:            now.UTC().Format(AddedAtLayout),
	}
}

func findByWord(cards []*model.FlashcardItem, word string) *model.FlashcardItem {
	for _, c := range cards {
		if c.Word == word {
			return c
		}
	}
	return nil
}

// Add returns the existing card when one with the same word exists, otherwise
// appends a new card.
func (s *flashcardService) Add(ctx context.Context, wp model.WordParse, example, exampleTranslation string) (*model.FlashcardItem, error) {
	logger := middleware.GetLogger(ctx).With(slog.String("collection", model.FlashcardKey), slog.String("word", wp.Word))

	cards, err := s.loadForWrite(ctx, logger)
	if err != nil {
		return nil, err
	}
	if existing := findByWord(cards, wp.Word); existing != nil {
		logger.Debug("Flashcard already exists", slog.Int64("id", existing.ID))
		return existing, nil
	}

	card := s.newCard(wp, example, exampleTranslation)
	cards = append(cards, card)
	if err := s.cards.WriteAll(ctx, cards); err != nil {
		logger.Error("Failed to persist flashcards", slog.Any("error", err))
		return nil, err
	}
	logger.Info("Flashcard added", slog.Int64("id", card.ID))
	return card, nil
}

// AddBatch adds one card per word parse, in input order, with examples aligned
// from the source and translated texts. The collection is written once.
func (s *flashcardService) AddBatch(ctx context.Context, wordParses []model.WordParse, sourceText, translatedText string) ([]*model.FlashcardItem, error) {
	logger := middleware.GetLogger(ctx).With(slog.String("collection", model.FlashcardKey))

	cards, err := s.loadForWrite(ctx, logger)
	if err != nil {
		return nil, err
	}

	results := make([]*model.FlashcardItem, 0, len(wordParses))
	added := 0
	for _, wp := range wordParses {
		if existing := findByWord(cards, wp.Word); existing != nil {
			results = append(results, existing)
			continue
		}
		example, translation := FindExample(wp.Word, wp.Meaning, sourceText, translatedText)
		card := s.newCard(wp, example, translation)
		cards = append(cards, card)
		results = append(results, card)
		added++
	}

	if added > 0 {
		if err := s.cards.WriteAll(ctx, cards); err != nil {
			logger.Error("Failed to persist flashcards", slog.Any("error", err))
			return nil, err
		}
	}
	logger.Info("Flashcard batch processed", slog.Int("requested", len(wordParses)), slog.Int("added", added))
	return results, nil
}

// UpdateStatus returns model.ErrNotFound when no card has id.
func (s *flashcardService) UpdateStatus(ctx context.Context, id int64, status model.FlashcardStatus) error {
	logger := middleware.GetLogger(ctx).With(slog.String("collection", model.FlashcardKey), slog.Int64("id", id))

	cards, err := s.loadForWrite(ctx, logger)
	if err != nil {
		return err
	}
	var card *model.FlashcardItem
	for _, c := range cards {
		if c.ID == id {
			card = c
			break
		}
	}
	if card == nil {
		logger.Warn("Flashcard not found for status update")
		return model.NewAppError("CARD_NOT_FOUND", "Card not found", "", model.ErrNotFound)
	}

	card.Status = status
	if err := s.cards.WriteAll(ctx, cards); err != nil {
		logger.Error("Failed to persist flashcards", slog.Any("error", err))
		return err
	}
	logger.Info("Flashcard status updated", slog.String("status", string(status)))
	return nil
}

// Delete removes the card with id. A missing id is not an error.
func (s *flashcardService) Delete(ctx context.Context, id int64) error {
	logger := middleware.GetLogger(ctx).With(slog.String("collection", model.FlashcardKey), slog.Int64("id", id))

	cards, err := s.loadForWrite(ctx, logger)
	if err != nil {
		return err
	}
	kept := make([]*model.FlashcardItem, 0, len(cards))
	for _, c := range cards {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if err := s.cards.WriteAll(ctx, kept); err != nil {
		logger.Error("Failed to persist flashcards", slog.Any("error", err))
		return err
	}
	logger.Info("Flashcard deleted", slog.Bool("found", len(kept) != len(cards)))
	return nil
}

func (s *flashcardService) GetProgress(ctx context.Context) (*model.Progress, error) {
	cards, err := s.cards.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeProgress(cards), nil
}

func (s *flashcardService) ReviewQueue(ctx context.Context) ([]*model.FlashcardItem, error) {
	cards, err := s.cards.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterReviewable(cards), nil
}

func (s *flashcardService) ToggleLearned(ctx context.Context, id int64) (model.FlashcardStatus, error) {
	cards, err := s.cards.ReadAll(ctx)
	if err != nil {
		return "", err
	}
	return Toggle(ctx, cards, id, s.UpdateStatus)
}

// Toggle flips card id between learned and not-learned through update.
// Learning counts as not learned.
func Toggle(ctx context.Context, cards []*model.FlashcardItem, id int64, update func(context.Context, int64, model.FlashcardStatus) error) (model.FlashcardStatus, error) {
	for _, c := range cards {
		if c.ID != id {
			continue
		}
		next := model.StatusLearned
		if c.Status == model.StatusLearned {
			next = model.StatusNotLearned
		}
		if err := update(ctx, id, next); err != nil {
			return "", err
		}
		return next, nil
	}
	return "", model.NewAppError("CARD_NOT_FOUND", "Card not found", "", model.ErrNotFound)
}

// ComputeProgress counts cards per status. Percentage is 0 when there are no cards.
func ComputeProgress(cards []*model.FlashcardItem) *model.Progress {
	p := &model.Progress{Total: len(cards)}
	for _, c := range cards {
		switch c.Status {
		case model.StatusLearned:
			p.Learned++
		case model.StatusLearning:
			p.Learning++
		case model.StatusNotLearned:
			p.NotLearned++
		}
	}
	if p.Total > 0 {
		p.Percentage = float64(p.Learned) / float64(p.Total) * 100
	}
	return p
}

// FilterReviewable keeps the cards that are not learned, in collection order.
func FilterReviewable(cards []*model.FlashcardItem) []*model.FlashcardItem {
	queue := make([]*model.FlashcardItem, 0, len(cards))
	for _, c := range cards {
		if c.Status != model.StatusLearned {
			queue = append(queue, c)
		}
	}
	return queue
}
