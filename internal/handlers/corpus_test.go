package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"corpus-ingestor/internal/indexer"
	"corpus-ingestor/internal/service"
	"corpus-ingestor/internal/service/mocks"
)

func TestIngestHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		method     string
		body       string
		mockSetup  func(*mocks.MockCorpusService)
		wantStatus int
		wantDone   bool
	}{
		{
			name:   "successful ingestion",
			method: http.MethodPost,
			body:   `{"qdrant_url":"http://q:6333","corpus":"/data/corpus"}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().
					Ingest(gomock.Any(), service.IngestRequest{QdrantURL: "http://q:6333", CorpusDir: "/data/corpus"}).
					Return(&indexer.Stats{FilesSeen: 2, ChunksStored: 7}, nil)
			},
			wantStatus: http.StatusOK,
			wantDone:   true,
		},
		{
			name:   "empty body uses defaults",
			method: http.MethodPost,
			body:   ``,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Ingest(gomock.Any(), service.IngestRequest{}).Return(&indexer.Stats{}, nil)
			},
			wantStatus: http.StatusOK,
			wantDone:   true,
		},
		{
			name:   "partial failure",
			method: http.MethodPost,
			body:   `{}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Ingest(gomock.Any(), gomock.Any()).
					Return(&indexer.Stats{FilesSeen: 2, FilesFailed: 1}, fmt.Errorf("%w: 1 of 2 files failed", indexer.ErrPartialFailure))
			},
			wantStatus: http.StatusOK,
			wantDone:   false,
		},
		{
			name:   "missing corpus",
			method: http.MethodPost,
			body:   `{"corpus":"nope"}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Ingest(gomock.Any(), gomock.Any()).
					Return(nil, &service.ValidationError{Field: "corpus", Message: "not found"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "store unreachable",
			method: http.MethodPost,
			body:   `{}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Ingest(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: connection refused", service.ErrExternalService))
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "invalid JSON",
			method:     http.MethodPost,
			body:       `not json`,
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
			handler := NewIngestHandler(mockService)

			req := httptest.NewRequest(tt.method, "/corpus/ingest", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("ServeHTTP() status = %v, want %v (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp IngestResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Done != tt.wantDone {
				t.Errorf("Done = %v, want %v", resp.Done, tt.wantDone)
			}
			if resp.Stats == nil {
				t.Error("Stats should be present")
			}
		})
	}
}

func TestCleanHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		method     string
		body       string
		mockSetup  func(*mocks.MockCorpusService)
		wantStatus int
	}{
		{
			name:   "successful clean",
			method: http.MethodPost,
			body:   `{"qdrant_url":"http://q:6333"}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Clean(gomock.Any(), "http://q:6333").Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "store error",
			method: http.MethodPost,
			body:   `{}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Clean(gomock.Any(), "").Return(service.ErrExternalService)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "wrong method",
			method:     http.MethodDelete,
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := mocks.NewMockCorpusService(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockService)
			}
			handler := NewCleanHandler(mockService)

			req := httptest.NewRequest(tt.method, "/corpus/clean", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				var resp CleanResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || !resp.Done {
					t.Errorf("response = %+v, %v; want done", resp, err)
				}
			}
		})
	}
}

func TestSearchHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		body       string
		mockSetup  func(*mocks.MockCorpusService)
		wantStatus int
		wantCount  int
	}{
		{
			name: "successful search",
			body: `{"query":"retention","k":2,"category":"policies","extension":".md"}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().
					Search(gomock.Any(), service.SearchRequest{Query: "retention", K: 2, Category: "policies", Extension: ".md"}).
					Return([]service.SearchHit{
						{ID: "a", Score: 0.9, Text: "t1", Source: "gdpr.md", Category: "policies", Extension: ".md", Path: "policies/gdpr.md"},
						{ID: "b", Score: 0.8, Text: "t2"},
					}, nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{
			name: "no results",
			body: `{"query":"nothing"}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  0,
		},
		{
			name: "invalid k",
			body: `{"query":"q","k":1000}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, &service.ValidationError{Field: "k", Message: "must be between 1 and 100"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing collection",
			body: `{"query":"q"}`,
			mockSetup: func(m *mocks.MockCorpusService) {
				m.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("%w: collection", service.ErrNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := mocks.NewMockCorpusService(ctrl)
			tt.mockSetup(mockService)
			handler := NewSearchHandler(mockService)

			req := httptest.NewRequest(http.MethodPost, "/corpus/search", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp SearchResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Results == nil {
				t.Error("Results should be an empty list, not null")
			}
			if len(resp.Results) != tt.wantCount {
				t.Errorf("Results = %d, want %d", len(resp.Results), tt.wantCount)
			}
		})
	}
}
