package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chromadish/internal/ratelimit"
	"chromadish/internal/storage"
	"chromadish/internal/studio"
)

func TestRoutes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mockup-a.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	router := NewRouter(Options{MediaDir: dir, Log: zerolog.Nop()}, studio.Handler{
		Store: storage.NewInMemoryStore(),
		Log:   zerolog.Nop(),
	})

	tests := []struct {
		path string
		want int
	}{
		{path: "/health", want: http.StatusOK},
		{path: "/api/catalog", want: http.StatusOK},
		{path: "/api/generations", want: http.StatusOK},
		{path: "/api/generations/unknown", want: http.StatusNotFound},
		{path: "/media/mockup-a.png", want: http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

func TestSubmissionsAreRateLimited(t *testing.T) {
	router := NewRouter(Options{
		Limiter: ratelimit.NewMemoryLimiter(1, time.Minute),
		Log:     zerolog.Nop(),
	}, studio.Handler{Log: zerolog.Nop()})

	var last int
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/variations", strings.NewReader(`{"prompt":"x"}`))
		req.RemoteAddr = "203.0.113.9:5555"
		router.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("second submission status = %d", last)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("reads must not be limited, got %d", rec.Code)
	}
}

func TestForwardedForFromUntrustedPeerIsIgnored(t *testing.T) {
	router := NewRouter(Options{
		Limiter: ratelimit.NewMemoryLimiter(1, time.Minute),
		Log:     zerolog.Nop(),
	}, studio.Handler{Log: zerolog.Nop()})

	codes := make([]int, 0, 2)
	for _, xff := range []string{"203.0.113.1", "203.0.113.2"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/variations", strings.NewReader(`{"prompt":"x"}`))
		req.RemoteAddr = "198.51.100.20:4000"
		req.Header.Set("X-Forwarded-For", xff)
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, second request should be limited", codes)
	}
}
