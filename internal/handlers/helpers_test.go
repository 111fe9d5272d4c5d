// helpers_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kata_lens/internal/handlers"
	"kata_lens/internal/model"
	"kata_lens/internal/recognizer"
	"kata_lens/internal/repository"
	"kata_lens/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// httpRequestDetails groups what sendRequest needs to build a request.
type httpRequestDetails struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
}

// sendRequest sends the request, asserts the status and returns the body.
func sendRequest(t *testing.T, server *httptest.Server, details httpRequestDetails, expectedCode int) []byte {
	t.Helper()

	var reqBody io.Reader
	if details.Body != nil {
		if raw, ok := details.Body.(string); ok {
			reqBody = strings.NewReader(raw)
		} else {
			b, err := json.Marshal(details.Body)
			require.NoError(t, err, "Failed to marshal request body")
			reqBody = bytes.NewReader(b)
		}
	}

	req, err := http.NewRequest(details.Method, server.URL+details.Path, reqBody)
	require.NoError(t, err, "Failed to create request")
	if details.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range details.Headers {
		req.Header.Set(key, value)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err, "Failed to execute request")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")
	assert.Equal(t, expectedCode, resp.StatusCode, "Status code mismatch, body: %s", string(body))
	return body
}

// verifyErrorResponse checks the error message of a JSON error body.
func verifyErrorResponse(t *testing.T, body []byte, wantError string) {
	t.Helper()
	var errResp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp), "body: %s", string(body))
	assert.Equal(t, wantError, errResp.Error)
}

func decodeBody[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), "body: %s", string(body))
	return v
}

// setupTestStore returns a KV store over a private in-memory sqlite database.
func setupTestStore(t *testing.T) repository.KVStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repository.Migrate(db))
	return repository.NewGormKVStore(db, discardLogger())
}

// newTestServer wires the real router over store-backed services.
func newTestServer(t *testing.T, store repository.KVStore, rec recognizer.Recognizer) *httptest.Server {
	t.Helper()
	log := discardLogger()
	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:    log,
		Translate: handlers.NewTranslateHandler(rec, log),
		Storage: handlers.NewStorageHandler(
			service.NewHistoryService(store, nil, log),
			service.NewFlashcardService(store, log),
			log,
		),
		CORS: cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		},
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}
