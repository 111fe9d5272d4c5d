package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kata_lens/internal/model"
)

func TestStorageHandler_History(t *testing.T) {
	server := newTestServer(t, setupTestStore(t), nil)

	// empty collection reads as []
	body := sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/api/storage?type=history&action=getAll"}, http.StatusOK)
	assert.JSONEq(t, `[]`, string(body))

	body = sendRequest(t, server, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/api/storage?type=history&action=add",
		Body: model.AddHistoryRequest{Item: &model.NewHistoryItem{
			Indonesian: "Selamat pagi",
			Chinese:    "早上好",
			WordParses: []model.WordParse{{Word: "pagi", Meaning: "早上"}},
		}},
	}, http.StatusOK)
	first := decodeBody[model.HistoryItem](t, body)
	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, first.Timestamp)
	assert.Equal(t, "Selamat pagi", first.Indonesian)

	body = sendRequest(t, server, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/api/storage?type=history&action=add",
		Body:   model.AddHistoryRequest{Item: &model.NewHistoryItem{Indonesian: "Terima kasih", Chinese: "谢谢"}},
	}, http.StatusOK)
	second := decodeBody[model.HistoryItem](t, body)

	body = sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/api/storage?type=history&action=getAll"}, http.StatusOK)
	all := decodeBody[[]model.HistoryItem](t, body)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	body = sendRequest(t, server, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/api/storage?type=history&action=delete",
		Body:   model.DeleteHistoryRequest{ID: "no-such-id"},
	}, http.StatusOK)
	assert.JSONEq(t, `{"success":true}`, string(body))

	body = sendRequest(t, server, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/api/storage?type=history&action=delete",
		Body:   `{}`,
	}, http.StatusOK)
	assert.JSONEq(t, `{"success":true}`, string(body))
	body = sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/api/storage?type=history&action=getAll"}, http.StatusOK)
	require.Len(t, decodeBody[[]model.HistoryItem](t, body), 2, "delete without an id keeps every item")

	sendRequest(t, server, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/api/storage?type=history&action=delete",
		Body:   model.DeleteHistoryRequest{ID: first.ID},
	}, http.StatusOK)
	body = sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/api/storage?type=history&action=getAll"}, http.StatusOK)
	all = decodeBody[[]model.HistoryItem](t, body)
	require.Len(t, all, 1)
	assert.Equal(t, second.ID, all[0].ID)

	body = sendRequest(t, server, httpRequestDetails{Method: http.MethodPost, Path: "/api/storage?type=history&action=clear"}, http.StatusOK)
	assert.JSONEq(t, `{"success":true}`, string(body))
	body = sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/api/storage?type=history&action=getAll"}, http.StatusOK)
	assert.JSONEq(t, `[]`, string(body))
}

func TestStorageHandler_Flashcard(t *testing.T) {
	server := newTestServer(t, setupTestStore(t), nil)
	rumah := model.WordParse{Word: "rumah", Meaning: "房子", PartOfSpeech: "名词", Root: "rumah"}

	body := sendRequest(t, server, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/api/storage?type=flashcard&action=addBatch",
		Body: model.AddFlashcardBatchRequest{
			WordParses:         []model.WordParse{rumah, {Word: "kucing", Meaning: "猫"}},
			IndonesianText:     "Saya suka rumah. Dia pergi ke sekolah.",
			ChineseTranslation: "我喜欢房子。他去学校。",
		},
	}, http.StatusOK)
	batch := decodeBody[[]model.FlashcardItem](t, body)
	require.Len(t, batch, 2)
	assert.Equal(t, "Saya suka rumah", batch[0].Example)
	assert.Equal(t, "我喜欢房子", batch[0].ExampleTranslation)
	assert.Equal(t, "kucing", batch[1].Example)
	assert.Equal(t, "猫", batch[1].ExampleTranslation)
	assert.Equal(t, model.StatusNotLearned, batch[0].Status)

	// add of an existing word returns the stored card
	body = sendRequest(t, server, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/api/storage?type=flashcard&action=add",
		Body:   model.AddFlashcardRequest{WordParse: &rumah, Example: "Rumah besar", ExampleTranslation: "大房子"},
	}, http.StatusOK)
	again := decodeBody[model.FlashcardItem](t, body)
	assert.Equal(t, batch[0], again)

	body = sendRequest(t, server, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/api/storage?type=flashcard&action=updateStatus",
		Body:   model.UpdateFlashcardStatusRequest{ID: batch[0].ID, Status: model.StatusLearned},
	}, http.StatusOK)
	assert.JSONEq(t, `{"success":true}`, string(body))

	body = sendRequest(t, server, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/api/storage?type=flashcard&action=updateStatus",
		Body:   model.UpdateFlashcardStatusRequest{ID: 42, Status: model.StatusLearned},
	}, http.StatusNotFound)
	verifyErrorResponse(t, body, "Card not found")

	body = sendRequest(t, server, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/api/storage?type=flashcard&action=delete",
		Body:   model.DeleteFlashcardRequest{ID: batch[1].ID},
	}, http.StatusOK)
	assert.JSONEq(t, `{"success":true}`, string(body))

	body = sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/api/storage?type=flashcard&action=getAll"}, http.StatusOK)
	cards := decodeBody[[]model.FlashcardItem](t, body)
	require.Len(t, cards, 1)
	assert.Equal(t, "rumah", cards[0].Word)
	assert.Equal(t, model.StatusLearned, cards[0].Status)
}

func TestStorageHandler_BadRequests(t *testing.T) {
	server := newTestServer(t, setupTestStore(t), nil)

	tests := []struct {
		name      string
		req       httpRequestDetails
		wantCode  int
		wantError string
	}{
		{
			name:      "missing type",
			req:       httpRequestDetails{Method: http.MethodGet, Path: "/api/storage?action=getAll"},
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid type",
		},
		{
			name:      "unknown type",
			req:       httpRequestDetails{Method: http.MethodGet, Path: "/api/storage?type=notes&action=getAll"},
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid type",
		},
		{
			name:      "unknown history action",
			req:       httpRequestDetails{Method: http.MethodPost, Path: "/api/storage?type=history&action=updateStatus"},
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid action",
		},
		{
			name:      "unknown flashcard action",
			req:       httpRequestDetails{Method: http.MethodPost, Path: "/api/storage?type=flashcard&action=clear"},
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid action",
		},
		{
			name:      "malformed json",
			req:       httpRequestDetails{Method: http.MethodPost, Path: "/api/storage?type=history&action=add", Body: `{"item":`},
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid JSON body",
		},
		{
			name:      "missing history item",
			req:       httpRequestDetails{Method: http.MethodPost, Path: "/api/storage?type=history&action=add", Body: `{}`},
			wantCode:  http.StatusBadRequest,
			wantError: "历史记录为必填项",
		},
		{
			name:      "status outside the allowed set",
			req:       httpRequestDetails{Method: http.MethodPost, Path: "/api/storage?type=flashcard&action=updateStatus", Body: `{"id":1,"status":"mastered"}`},
			wantCode:  http.StatusBadRequest,
			wantError: "学习状态必须是[not-learned learning learned]中的一个",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := sendRequest(t, server, tt.req, tt.wantCode)
			verifyErrorResponse(t, body, tt.wantError)
		})
	}
}

func TestStorageHandler_CorruptCollection(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Set(context.Background(), model.FlashcardKey, []byte("not json")))
	server := newTestServer(t, store, nil)

	body := sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/api/storage?type=flashcard&action=getAll"}, http.StatusInternalServerError)
	errResp := decodeBody[model.APIErrorResponse](t, body)
	assert.NotEmpty(t, errResp.Error)
	assert.Contains(t, errResp.Details, "corrupt")
}

func TestStorageHandler_CORS(t *testing.T) {
	server := newTestServer(t, setupTestStore(t), nil)

	t.Run("plain OPTIONS short-circuits", func(t *testing.T) {
		body := sendRequest(t, server, httpRequestDetails{Method: http.MethodOptions, Path: "/api/storage?type=history&action=getAll"}, http.StatusOK)
		assert.Empty(t, body)
	})

	preflight := func(t *testing.T, requestHeaders string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/storage?type=history&action=add", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", requestHeaders)

		resp, err := server.Client().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	// Browsers send Access-Control-Request-Headers lowercased.
	t.Run("preflight", func(t *testing.T) {
		resp := preflight(t, "content-type")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Equal(t, "content-type", resp.Header.Get("Access-Control-Allow-Headers"))
	})

	t.Run("preflight with non-canonical header names is not granted", func(t *testing.T) {
		resp := preflight(t, "Content-Type")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("simple request carries allow-origin", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/api/storage?type=history&action=getAll", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://app.example.com")

		resp, err := server.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})
}
