package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRequestIDMiddleware(t *testing.T) {
	const incoming = "0b6f4c1e-8d2a-4f3b-9c5d-7e8f9a0b1c2d"

	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{"ヘッダーなし", "", false},
		{"有効なUUIDを引き継ぐ", incoming, true},
		{"不正な値は置き換える", "<script>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromCtx string
			handler := NewRequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fromCtx = RequestIDFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/shelters", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("X-Request-ID = %q, UUIDであるべき", got)
			}
			if got != fromCtx {
				t.Errorf("context = %q, header = %q", fromCtx, got)
			}
			if (got == tt.header) != tt.wantSame {
				t.Errorf("X-Request-ID = %q, incoming = %q", got, tt.header)
			}
		})
	}
}

func TestRequestIDFrom_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := RequestIDFrom(req.Context()); got != "" {
		t.Errorf("RequestIDFrom() = %q, want empty", got)
	}
}
