// Package recognizer turns a photo of Indonesian text into source text, a
// Chinese translation and the words the reader marked by hand. The vision
// model is called either directly or through the backend's /api/translate.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kata_lens/internal/model"
)

// Mode selects how images reach the model.
type Mode string

const (
	ModeDirect  Mode = "direct"
	ModeProxied Mode = "proxied"
)

// Recognizer recognizes one base64 data-URL image.
type Recognizer interface {
	Recognize(ctx context.Context, imageData string) (*model.RecognitionResult, error)
}

// Config is resolved once at startup and passed to New.
type Config struct {
	Mode        Mode
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	BackendURL  string
}

// New returns the recognizer for cfg.Mode.
func New(cfg Config, logger *slog.Logger) (Recognizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	switch cfg.Mode {
	case ModeDirect:
		return NewOpenAIRecognizer(cfg, httpClient, logger), nil
	case ModeProxied:
		if cfg.BackendURL == "" {
			return nil, errors.New("proxied recognition needs a backend url")
		}
		return NewProxyRecognizer(cfg.BackendURL, httpClient, logger), nil
	default:
		return nil, fmt.Errorf("unknown recognition mode %q", cfg.Mode)
	}
}

// Failure taxonomy.
var (
	ErrMissingCredential = errors.New("api key not configured")
	ErrEmptyContent      = errors.New("empty response from model")
	ErrInvalidFormat     = errors.New("invalid response format")
	ErrNetwork           = errors.New("network failure")
)

// Messages of the /api/translate error bodies.
const (
	MsgMethodNotAllowed  = "Method not allowed"
	MsgMissingImage      = "Missing image data"
	MsgMissingCredential = "API key not configured"
	MsgUpstreamFailed    = "OpenAI API request failed"
	MsgEmptyContent      = "Empty response from OpenAI"
	MsgInvalidFormat     = "Invalid response format"
)

// UpstreamError is a non-2xx reply from the model API or the backend route.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// IsQuotaExceeded reports an exhausted account rather than a rate limit blip.
func (e *UpstreamError) IsQuotaExceeded() bool {
	return strings.Contains(strings.ToLower(e.Message), "quota")
}

// UserMessage renders err for the person holding the phone.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "API Key 配置错误，请检查环境变量"
	case errors.As(err, &upstream) && upstream.IsQuotaExceeded():
		return "API 配额已用完，请检查账户余额"
	case errors.Is(err, ErrNetwork):
		return "网络连接失败，请检查网络设置"
	case errors.Is(err, ErrEmptyContent):
		return "API 返回内容为空"
	case errors.Is(err, ErrInvalidFormat):
		return "API 返回格式不正确"
	case errors.As(err, &upstream):
		if upstream.Message != "" {
			return upstream.Message
		}
		return fmt.Sprintf("识别请求失败 (HTTP %d)", upstream.StatusCode)
	default:
		return err.Error()
	}
}

// Outcome classifies err for metrics.
func Outcome(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.As(err, &upstream):
		return "upstream_error"
	case errors.Is(err, ErrEmptyContent):
		return "empty_content"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	default:
		return "error"
	}
}

// EstimateCost is a rough USD price of one call: about 400 input tokens
// (prompt plus an average image) and 1000 output tokens at gpt-4o rates.
func EstimateCost() float64 {
	const (
		inputTokens      = 250 + 150
		outputTokens     = 1000
		inputPerMillion  = 2.50
		outputPerMillion = 10.00
	)
	return inputTokens/1_000_000.0*inputPerMillion + outputTokens/1_000_000.0*outputPerMillion
}
