package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"corpus-ingestor/internal/service"
	"corpus-ingestor/internal/service/mocks"
)

func TestNewEmbedHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockCorpusService(ctrl)
	handler := NewEmbedHandler(mockService)

	if handler == nil {
		t.Fatal("NewEmbedHandler() returned nil")
	}
	if handler.corpusService != mockService {
		t.Error("NewEmbedHandler() corpusService not set correctly")
	}
}

func TestEmbedHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name          string
		method        string
		body          string
		mockSetup     func(*mocks.MockCorpusService)
		wantStatus    int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:   "successful request",
			method: http.MethodPost,
			body:   `{"texts":["a","b"]}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Embed(gomock.Any(), []string{"a", "b"}).Return([][]float32{{0.5, 1}, {1, 0.5}}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp EmbedResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if len(resp.Vectors) != 2 || resp.Vectors[0][0] != 0.5 {
					t.Errorf("Vectors = %v", resp.Vectors)
				}
			},
		},
		{
			name:   "empty texts",
			method: http.MethodPost,
			body:   `{"texts":[]}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Embed(gomock.Any(), []string{}).Return(nil, &service.ValidationError{Field: "texts", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "embedding server down",
			method: http.MethodPost,
			body:   `{"texts":["a"]}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Embed(gomock.Any(), gomock.Any()).Return(nil, errors.Join(service.ErrExternalService, errors.New("refused")))
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "invalid JSON",
			method:     http.MethodPost,
			body:       `{"texts":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong method",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := mocks.NewMockCorpusService(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := NewEmbedHandler(mockService)

			req := httptest.NewRequest(tt.method, "/embed", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}
