// internal/handlers/translate_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"kata_lens/internal/middleware"
	"kata_lens/internal/model"
	"kata_lens/internal/recognizer"
	"kata_lens/internal/webutil"
)

// TranslateHandler serves POST /api/translate. It owns the model credential
// through its recognizer.
type TranslateHandler struct {
	recognizer recognizer.Recognizer
	logger     *slog.Logger
}

// NewTranslateHandler creates a new TranslateHandler. rec may be nil when no API key is configured.
func NewTranslateHandler(rec recognizer.Recognizer, logger *slog.Logger) *TranslateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslateHandler{
		recognizer: rec,
		logger:     logger,
	}
}

// Translate handles POST /api/translate.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "Translate"))

	if r.Method != http.MethodPost {
		webutil.RespondWithError(w, http.StatusMethodNotAllowed, recognizer.MsgMethodNotAllowed)
		return
	}

	var req model.TranslateRequest
	if err := webutil.DecodeJSONBody(w, r, &req); err != nil {
		logger.Warn("Failed to decode translate request", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	if req.ImageBase64 == "" {
		webutil.RespondWithError(w, http.StatusBadRequest, recognizer.MsgMissingImage)
		return
	}

	if h.recognizer == nil {
		h.respondRecognitionError(w, logger, recognizer.ErrMissingCredential)
		return
	}

	start := time.Now()
	result, err := h.recognizer.Recognize(r.Context(), req.ImageBase64)
	middleware.RecordRecognition(recognizer.Outcome(err), time.Since(start))
	if err != nil {
		h.respondRecognitionError(w, logger, err)
		return
	}

	logger.Info("Image recognized",
		slog.Int("words", len(result.WordParses)),
		slog.Int("source_chars", len([]rune(result.IndonesianText))),
		slog.Duration("took", time.Since(start)),
	)
	webutil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *TranslateHandler) respondRecognitionError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var upstream *recognizer.UpstreamError
	switch {
	case errors.Is(err, recognizer.ErrMissingCredential):
		logger.Error("OpenAI API key is not configured")
		webutil.RespondWithError(w, http.StatusInternalServerError, recognizer.MsgMissingCredential)
	case errors.As(err, &upstream):
		logger.Error("OpenAI API request failed", slog.Int("status", upstream.StatusCode), slog.String("message", upstream.Message))
		webutil.RespondWithJSON(w, upstream.StatusCode, model.APIErrorResponse{
			Error:   recognizer.MsgUpstreamFailed,
			Details: upstream.Message,
		})
	case errors.Is(err, recognizer.ErrEmptyContent):
		logger.Error("Empty response from OpenAI")
		webutil.RespondWithError(w, http.StatusInternalServerError, recognizer.MsgEmptyContent)
	case errors.Is(err, recognizer.ErrInvalidFormat):
		logger.Error("Invalid response format from OpenAI", slog.Any("error", err))
		webutil.RespondWithError(w, http.StatusInternalServerError, recognizer.MsgInvalidFormat)
	case errors.Is(err, recognizer.ErrNetwork):
		logger.Error("Network failure calling OpenAI", slog.Any("error", err))
		webutil.RespondWithError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("Translation failed", slog.Any("error", err))
		webutil.RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
