package client

import (
	"context"
	"log/slog"

	"kata_lens/internal/config"
	"kata_lens/internal/model"
	"kata_lens/internal/service"
)

type remoteHistoryService struct {
	client   *StorageClient
	pageSize int
	logger   *slog.Logger
}

// NewRemoteHistoryService keeps history on the backend. Search and Page are
// computed here from getAll.
func NewRemoteHistoryService(client *StorageClient, pageSize int, logger *slog.Logger) service.HistoryService {
	if pageSize < 1 {
		pageSize = config.DefaultHistoryPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &remoteHistoryService{client: client, pageSize: pageSize, logger: logger}
}

func (s *remoteHistoryService) GetAll(ctx context.Context) ([]*model.HistoryItem, error) {
	var items []*model.HistoryItem
	if err := s.client.Do(ctx, model.StorageTypeHistory, model.ActionGetAll, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.HistoryItem{}
	}
	return items, nil
}

func (s *remoteHistoryService) Add(ctx context.Context, in *model.NewHistoryItem) (*model.HistoryItem, error) {
	if in == nil {
		return nil, model.NewAppError("INVALID_HISTORY_ITEM", "item is required", "item", model.ErrInvalidInput)
	}
	var item model.HistoryItem
	if err := s.client.Do(ctx, model.StorageTypeHistory, model.ActionAdd, model.AddHistoryRequest{Item: in}, &item); err != nil {
		return nil, err
	}
	s.logger.Debug("History item stored remotely", slog.String("id", item.ID))
	return &item, nil
}

func (s *remoteHistoryService) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, model.StorageTypeHistory, model.ActionDelete, model.DeleteHistoryRequest{ID: id}, nil)
}

func (s *remoteHistoryService) Clear(ctx context.Context) error {
	return s.client.Do(ctx, model.StorageTypeHistory, model.ActionClear, nil, nil)
}

func (s *remoteHistoryService) Search(ctx context.Context, keyword string) ([]*model.HistoryItem, error) {
	items, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return service.FilterHistory(items, keyword), nil
}

func (s *remoteHistoryService) Page(ctx context.Context, keyword string, page, limit int) (*model.HistoryPage, error) {
	items, err := s.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = s.pageSize
	}
	return service.Paginate(items, page, limit), nil
}

type remoteFlashcardService struct {
	client *StorageClient
	logger *slog.Logger
}

// NewRemoteFlashcardService keeps flashcards on the backend. Progress, the
// review queue and toggling are computed here from getAll.
func NewRemoteFlashcardService(client *StorageClient, logger *slog.Logger) service.FlashcardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &remoteFlashcardService{client: client, logger: logger}
}

func (s *remoteFlashcardService) GetAll(ctx context.Context) ([]*model.FlashcardItem, error) {
	var cards []*model.FlashcardItem
	if err := s.client.Do(ctx, model.StorageTypeFlashcard, model.ActionGetAll, nil, &cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []*model.FlashcardItem{}
	}
	return cards, nil
}

func (s *remoteFlashcardService) Add(ctx context.Context, wp model.WordParse, example, exampleTranslation string) (*model.FlashcardItem, error) {
	var card model.FlashcardItem
	req := model.AddFlashcardRequest{WordParse: &wp, Example: example, ExampleTranslation: exampleTranslation}
	if err := s.client.Do(ctx, model.StorageTypeFlashcard, model.ActionAdd, req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (s *remoteFlashcardService) AddBatch(ctx context.Context, wordParses []model.WordParse, sourceText, translatedText string) ([]*model.FlashcardItem, error) {
	if wordParses == nil {
		wordParses = []model.WordParse{}
	}
	var cards []*model.FlashcardItem
	req := model.AddFlashcardBatchRequest{
		WordParses:         wordParses,
		IndonesianText:     sourceText,
		ChineseTranslation: translatedText,
	}
	if err := s.client.Do(ctx, model.StorageTypeFlashcard, model.ActionAddBatch, req, &cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []*model.FlashcardItem{}
	}
	s.logger.Debug("Flashcard batch stored remotely", slog.Int("count", len(cards)))
	return cards, nil
}

func (s *remoteFlashcardService) UpdateStatus(ctx context.Context, id int64, status model.FlashcardStatus) error {
	return s.client.Do(ctx, model.StorageTypeFlashcard, model.ActionUpdateStatus, model.UpdateFlashcardStatusRequest{ID: id, Status: status}, nil)
}

func (s *remoteFlashcardService) Delete(ctx context.Context, id int64) error {
	return s.client.Do(ctx, model.StorageTypeFlashcard, model.ActionDelete, model.DeleteFlashcardRequest{ID: id}, nil)
}

func (s *remoteFlashcardService) GetProgress(ctx context.Context) (*model.Progress, error) {
	cards, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return service.ComputeProgress(cards), nil
}

func (s *remoteFlashcardService) ReviewQueue(ctx context.Context) ([]*model.FlashcardItem, error) {
	cards, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return service.FilterReviewable(cards), nil
}

func (s *remoteFlashcardService) ToggleLearned(ctx context.Context, id int64) (model.FlashcardStatus, error) {
	cards, err := s.GetAll(ctx)
	if err != nil {
		return "", err
	}
	return service.Toggle(ctx, cards, id, s.UpdateStatus)
}
