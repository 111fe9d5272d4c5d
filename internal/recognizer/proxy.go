package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"kata_lens/internal/model"
)

// ProxyRecognizer posts the image to the backend's /api/translate, which owns
// the API credential.
type ProxyRecognizer struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewProxyRecognizer creates a recognizer that forwards images to the backend /api/translate route.
func NewProxyRecognizer(backendURL string, httpClient *http.Client, logger *slog.Logger) *ProxyRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProxyRecognizer{
		endpoint:   strings.TrimRight(backendURL, "/") + "/api/translate",
		httpClient: httpClient,
		logger:     logger,
	}
}

func (r *ProxyRecognizer) Recognize(ctx context.Context, imageData string) (*model.RecognitionResult, error) {
	reqBody, err := json.Marshal(model.TranslateRequest{ImageBase64: imageData})
	if err != nil {
		return nil, fmt.Errorf("marshal translate request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.ErrorContext(ctx, "Translate request failed", slog.String("endpoint", r.endpoint), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, backendError(resp.StatusCode, body)
	}

	var result model.RecognitionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode translate response: %v", ErrInvalidFormat, err)
	}
	if result.WordParses == nil {
		result.WordParses = []model.WordParse{}
	}
	return &result, nil
}

// backendError maps the backend's {"error": ...} body back onto the taxonomy.
func backendError(status int, body []byte) error {
	var errBody model.APIErrorResponse
	if err := json.Unmarshal(body, &errBody); err != nil || errBody.Error == "" {
		errBody = model.APIErrorResponse{Error: strings.TrimSpace(string(body))}
	}

	switch errBody.Error {
	case MsgMissingCredential:
		return ErrMissingCredential
	case MsgEmptyContent:
		return ErrEmptyContent
	case MsgInvalidFormat:
		return ErrInvalidFormat
	}
	// the upstream's own message travels in details
	message := errBody.Details
	if message == "" {
		message = errBody.Error
	}
	if message == "" {
		message = "Translation failed"
	}
	return &UpstreamError{StatusCode: status, Message: message}
}
