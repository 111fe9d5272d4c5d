// Package client speaks the backend's /api/storage protocol. It is the remote
// persistence mode of the client binary.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kata_lens/internal/model"
)

const defaultTimeout = 30 * time.Second

// StorageAPIError is a non-2xx reply from /api/storage.
type StorageAPIError struct {
	StatusCode int
	Body       string
}

func (e *StorageAPIError) Error() string {
	var body model.APIErrorResponse
	if err := json.Unmarshal([]byte(e.Body), &body); err == nil && body.Error != "" {
		if body.Details != "" {
			return fmt.Sprintf("storage api returned %d: %s (%s)", e.StatusCode, body.Error, body.Details)
		}
		return fmt.Sprintf("storage api returned %d: %s", e.StatusCode, body.Error)
	}
	return fmt.Sprintf("storage api returned %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Is lets callers match 404 and 400 replies with the model sentinels.
func (e *StorageAPIError) Is(target error) bool {
	switch target {
	case model.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case model.ErrInvalidInput:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

// StorageClient talks to a backend /api/storage endpoint.
type StorageClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewStorageClient targets {baseURL}/api/storage. A nil httpClient gets a
// client with a 30 second timeout.
func NewStorageClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *StorageClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageClient{
		endpoint:   strings.TrimRight(baseURL, "/") + "/api/storage",
		httpClient: httpClient,
		logger:     logger,
	}
}

// Do performs one storage action. getAll is sent as a GET without a body,
// everything else as a POST with payload as JSON ({} when payload is nil).
// The reply is decoded into out unless out is nil.
func (c *StorageClient) Do(ctx context.Context, storageType model.StorageType, action model.StorageAction, payload, out interface{}) error {
	logger := c.logger.With(slog.String("type", string(storageType)), slog.String("action", string(action)))

	query := url.Values{}
	query.Set("type", string(storageType))
	query.Set("action", string(action))
	target := c.endpoint + "?" + query.Encode()

	var req *http.Request
	var err error
	if action == model.ActionGetAll {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	} else {
		body := []byte("{}")
		if payload != nil {
			body, err = json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("marshal %s/%s payload: %w", storageType, action, err)
			}
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return fmt.Errorf("create storage request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Error("Storage request failed", slog.Any("error", err))
		return fmt.Errorf("%s/%s: %w: %v", storageType, action, model.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s/%s: %w: read response: %v", storageType, action, model.ErrStorageUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &StorageAPIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		logger.Warn("Storage API returned an error", slog.Int("status", resp.StatusCode), slog.String("body", string(respBody)))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s/%s response: %w: %v", storageType, action, model.ErrCorruptData, err)
	}
	return nil
}

// IsUnavailable reports whether err means the backend could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, model.ErrStorageUnavailable)
}
