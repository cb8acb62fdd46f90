package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadyHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		method     string
		wantStatus int
		wantBody   string
	}{
		{name: "true", value: "true", wantStatus: http.StatusOK, wantBody: `{"ready":true}`},
		{name: "one", value: "1", wantStatus: http.StatusOK, wantBody: `{"ready":true}`},
		{name: "yes uppercase", value: "YES", wantStatus: http.StatusOK, wantBody: `{"ready":true}`},
		{name: "false", value: "false", wantStatus: http.StatusServiceUnavailable, wantBody: `{"ready":false}`},
		{name: "unset", value: "", wantStatus: http.StatusServiceUnavailable, wantBody: `{"ready":false}`},
		{name: "garbage", value: "maybe", wantStatus: http.StatusServiceUnavailable, wantBody: `{"ready":false}`},
		{name: "wrong method", value: "true", method: http.MethodPost, wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewReadyHandler("READY")
			handler.lookup = func(name string) string {
				if name != "READY" {
					t.Errorf("lookup(%q), want READY", name)
				}
				return tt.value
			}

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(method, "/ready", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && strings.TrimSpace(w.Body.String()) != tt.wantBody {
				t.Errorf("body = %s, want %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestReadyHandler_ReadsEnvironmentPerRequest(t *testing.T) {
	handler := NewReadyHandler("CORPUS_INGESTOR_TEST_READY")

	t.Setenv("CORPUS_INGESTOR_TEST_READY", "0")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %v, want 503", w.Code)
	}

	t.Setenv("CORPUS_INGESTOR_TEST_READY", "1")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %v, want 200 after flag flipped", w.Code)
	}
}
