package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"kata_lens/internal/model"
	"kata_lens/internal/recognizer"
)

// MockRecognizer is a testify mock of recognizer.Recognizer.
type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) Recognize(ctx context.Context, imageData string) (*model.RecognitionResult, error) {
	args := m.Called(ctx, imageData)
	var result *model.RecognitionResult
	if r := args.Get(0); r != nil {
		result = r.(*model.RecognitionResult)
	}
	return result, args.Error(1)
}

const testImage = "data:image/jpeg;base64,/9j/4AAQSkZJRg=="

func TestTranslateHandler(t *testing.T) {
	recognized := &model.RecognitionResult{
		IndonesianText:     "Saya makan nasi.",
		ChineseTranslation: "我吃米饭。",
		WordParses: []model.WordParse{
			{Word: "makan", Meaning: "吃", PartOfSpeech: "动词", Root: "makan"},
		},
	}

	tests := []struct {
		name        string
		method      string
		body        interface{}
		setupMock   func(m *MockRecognizer)
		wantCode    int
		wantError   string
		wantDetails string
		wantResult  *model.RecognitionResult
	}{
		{
			name:       "success",
			method:     http.MethodPost,
			body:       model.TranslateRequest{ImageBase64: testImage},
			setupMock:  func(m *MockRecognizer) { m.On("Recognize", mock.Anything, testImage).Return(recognized, nil).Once() },
			wantCode:   http.StatusOK,
			wantResult: recognized,
		},
		{
			name:      "method not allowed",
			method:    http.MethodGet,
			wantCode:  http.StatusMethodNotAllowed,
			wantError: recognizer.MsgMethodNotAllowed,
		},
		{
			name:      "missing image",
			method:    http.MethodPost,
			body:      `{}`,
			wantCode:  http.StatusBadRequest,
			wantError: recognizer.MsgMissingImage,
		},
		{
			name:      "empty body",
			method:    http.MethodPost,
			wantCode:  http.StatusBadRequest,
			wantError: recognizer.MsgMissingImage,
		},
		{
			name:      "malformed json",
			method:    http.MethodPost,
			body:        `{"imageBase64":`,
			wantCode:    http.StatusBadRequest,
			wantError:   "Invalid JSON body",
			wantDetails: "unexpected EOF",
		},
		{
			name:   "missing credential",
			method: http.MethodPost,
			body:   model.TranslateRequest{ImageBase64: testImage},
			setupMock: func(m *MockRecognizer) {
				m.On("Recognize", mock.Anything, testImage).Return(nil, recognizer.ErrMissingCredential).Once()
			},
			wantCode:  http.StatusInternalServerError,
			wantError: recognizer.MsgMissingCredential,
		},
		{
			name:   "upstream status passes through",
			method: http.MethodPost,
			body:   model.TranslateRequest{ImageBase64: testImage},
			setupMock: func(m *MockRecognizer) {
				m.On("Recognize", mock.Anything, testImage).
					Return(nil, &recognizer.UpstreamError{StatusCode: http.StatusTooManyRequests, Message: "You exceeded your current quota"}).Once()
			},
			wantCode:    http.StatusTooManyRequests,
			wantError:   recognizer.MsgUpstreamFailed,
			wantDetails: "You exceeded your current quota",
		},
		{
			name:   "empty content",
			method: http.MethodPost,
			body:   model.TranslateRequest{ImageBase64: testImage},
			setupMock: func(m *MockRecognizer) {
				m.On("Recognize", mock.Anything, testImage).Return(nil, recognizer.ErrEmptyContent).Once()
			},
			wantCode:  http.StatusInternalServerError,
			wantError: recognizer.MsgEmptyContent,
		},
		{
			name:   "invalid format",
			method: http.MethodPost,
			body:   model.TranslateRequest{ImageBase64: testImage},
			setupMock: func(m *MockRecognizer) {
				m.On("Recognize", mock.Anything, testImage).
					Return(nil, fmt.Errorf("%w: no json object in reply", recognizer.ErrInvalidFormat)).Once()
			},
			wantCode:  http.StatusInternalServerError,
			wantError: recognizer.MsgInvalidFormat,
		},
		{
			name:   "network failure",
			method: http.MethodPost,
			body:   model.TranslateRequest{ImageBase64: testImage},
			setupMock: func(m *MockRecognizer) {
				m.On("Recognize", mock.Anything, testImage).
					Return(nil, fmt.Errorf("%w: connection refused", recognizer.ErrNetwork)).Once()
			},
			wantCode:  http.StatusBadGateway,
			wantError: "network failure: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := new(MockRecognizer)
			if tt.setupMock != nil {
				tt.setupMock(rec)
			}
			server := newTestServer(t, setupTestStore(t), rec)

			body := sendRequest(t, server, httpRequestDetails{Method: tt.method, Path: "/api/translate", Body: tt.body}, tt.wantCode)

			if tt.wantResult != nil {
				got := decodeBody[model.RecognitionResult](t, body)
				assert.Equal(t, *tt.wantResult, got)
			} else {
				errResp := decodeBody[model.APIErrorResponse](t, body)
				assert.Equal(t, tt.wantError, errResp.Error)
				assert.Equal(t, tt.wantDetails, errResp.Details)
			}
			rec.AssertExpectations(t)
		})
	}
}

func TestTranslateHandler_NoRecognizer(t *testing.T) {
	server := newTestServer(t, setupTestStore(t), nil)
	body := sendRequest(t, server, httpRequestDetails{
		Method: http.MethodPost,
		Path:   "/api/translate",
		Body:   model.TranslateRequest{ImageBase64: testImage},
	}, http.StatusInternalServerError)
	verifyErrorResponse(t, body, recognizer.MsgMissingCredential)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	server := newTestServer(t, setupTestStore(t), nil)

	body := sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/health"}, http.StatusOK)
	assert.Equal(t, "OK", string(body))

	sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/api/storage?type=history&action=getAll"}, http.StatusOK)
	body = sendRequest(t, server, httpRequestDetails{Method: http.MethodGet, Path: "/metrics"}, http.StatusOK)
	assert.Contains(t, string(body), "storage_operations_total")
}
