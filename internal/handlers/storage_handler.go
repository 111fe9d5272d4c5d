// internal/handlers/storage_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"kata_lens/internal/middleware"
	"kata_lens/internal/model"
	"kata_lens/internal/service"
	"kata_lens/internal/webutil"
)

// StorageHandler serves GET|POST /api/storage?type=...&action=...
type StorageHandler struct {
	history    service.HistoryService
	flashcards service.FlashcardService
	logger     *slog.Logger
}

// NewStorageHandler creates a new StorageHandler.
func NewStorageHandler(history service.HistoryService, flashcards service.FlashcardService, logger *slog.Logger) *StorageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageHandler{
		history:    history,
		flashcards: flashcards,
		logger:     logger,
	}
}

// Handle dispatches on the type and action query parameters.
func (h *StorageHandler) Handle(w http.ResponseWriter, r *http.Request) {
	storageType := model.StorageType(r.URL.Query().Get("type"))
	action := model.StorageAction(r.URL.Query().Get("action"))
	logger := middleware.GetLogger(r.Context()).With(
		slog.String("handler", "Storage"),
		slog.String("type", string(storageType)),
		slog.String("action", string(action)),
	)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	switch storageType {
	case model.StorageTypeHistory:
		h.handleHistory(rec, r, action, logger)
	case model.StorageTypeFlashcard:
		h.handleFlashcard(rec, r, action, logger)
	default:
		logger.Warn("Invalid storage type")
		webutil.RespondWithError(rec, http.StatusBadRequest, "Invalid type")
		middleware.RecordStorageOperation("invalid", "invalid", rec.status)
		return
	}

	recordedAction := string(action)
	if rec.status == http.StatusBadRequest && rec.invalidAction {
		recordedAction = "invalid"
	}
	middleware.RecordStorageOperation(string(storageType), recordedAction, rec.status)
}

func (h *StorageHandler) handleHistory(w *statusRecorder, r *http.Request, action model.StorageAction, logger *slog.Logger) {
	ctx := r.Context()

	switch action {
	case model.ActionGetAll:
		items, err := h.history.GetAll(ctx)
		if err != nil {
			webutil.HandleError(w, logger, err)
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, items)

	case model.ActionAdd:
		var req model.AddHistoryRequest
		if err := webutil.DecodeAndValidate(w, r, &req); err != nil {
			logger.Warn("Invalid add history request", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
			return
		}
		item, err := h.history.Add(ctx, req.Item)
		if err != nil {
			webutil.HandleError(w, logger, err)
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, item)

	case model.ActionDelete:
		var req model.DeleteHistoryRequest
		if err := webutil.DecodeAndValidate(w, r, &req); err != nil {
			logger.Warn("Invalid delete history request", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
			return
		}
		if err := h.history.Delete(ctx, req.ID); err != nil {
			webutil.HandleError(w, logger, err)
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, model.SuccessResponse{Success: true})

	case model.ActionClear:
		if err := h.history.Clear(ctx); err != nil {
			webutil.HandleError(w, logger, err)
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, model.SuccessResponse{Success: true})

	default:
		logger.Warn("Invalid history action")
		w.invalidAction = true
		webutil.RespondWithError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *StorageHandler) handleFlashcard(w *statusRecorder, r *http.Request, action model.StorageAction, logger *slog.Logger) {
	ctx := r.Context()

	switch action {
	case model.ActionGetAll:
		cards, err := h.flashcards.GetAll(ctx)
		if err != nil {
			webutil.HandleError(w, logger, err)
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, cards)

	case model.ActionAdd:
		var req model.AddFlashcardRequest
		if err := webutil.DecodeAndValidate(w, r, &req); err != nil {
			logger.Warn("Invalid add flashcard request", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
			return
		}
		card, err := h.flashcards.Add(ctx, *req.WordParse, req.Example, req.ExampleTranslation)
		if err != nil {
			webutil.HandleError(w, logger, err)
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, card)

	case model.ActionAddBatch:
		var req model.AddFlashcardBatchRequest
		if err := webutil.DecodeAndValidate(w, r, &req); err != nil {
			logger.Warn("Invalid add batch request", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
			return
		}
		cards, err := h.flashcards.AddBatch(ctx, req.WordParses, req.IndonesianText, req.ChineseTranslation)
		if err != nil {
			webutil.HandleError(w, logger, err)
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, cards)

	case model.ActionUpdateStatus:
		var req model.UpdateFlashcardStatusRequest
		if err := webutil.DecodeAndValidate(w, r, &req); err != nil {
			logger.Warn("Invalid update status request", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
			return
		}
		if err := h.flashcards.UpdateStatus(ctx, req.ID, req.Status); err != nil {
			webutil.HandleError(w, logger, err)
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, model.SuccessResponse{Success: true})

	case model.ActionDelete:
		var req model.DeleteFlashcardRequest
		if err := webutil.DecodeAndValidate(w, r, &req); err != nil {
			logger.Warn("Invalid delete flashcard request", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
			return
		}
		if err := h.flashcards.Delete(ctx, req.ID); err != nil {
			webutil.HandleError(w, logger, err)
			return
		}
		webutil.RespondWithJSON(w, http.StatusOK, model.SuccessResponse{Success: true})

	default:
		logger.Warn("Invalid flashcard action")
		w.invalidAction = true
		webutil.RespondWithError(w, http.StatusBadRequest, "Invalid action")
	}
}

// statusRecorder remembers the written status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status        int
	invalidAction bool
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Options answers CORS preflight requests with 200 and no body.
func Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
