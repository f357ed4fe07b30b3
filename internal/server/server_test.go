package server

import (
	"context"
	"ctchen222/tictactoe-service/internal/api/controller"
	"ctchen222/tictactoe-service/internal/api/repository"
	"ctchen222/tictactoe-service/internal/api/service"
	"ctchen222/tictactoe-service/internal/config"
	"ctchen222/tictactoe-service/internal/db"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestServer(t *testing.T, origins ...string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pool, err := db.SQLiteConnect(context.Background(), filepath.Join(t.TempDir(), "games.db"))
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	svc, err := service.NewGameService(repository.NewGameRepository(pool))
	require.NoError(t, err)

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return NewServer(config.HTTP{
		Addr:           ":0",
		ReadTimeout:    time.Second,
		WriteTimeout:   2 * time.Second,
		AllowedOrigins: origins,
	}, controller.NewGameController(svc))
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method   string
		path     string
		body     string
		wantCode int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodPost, "/api/games", "", http.StatusCreated},
		{http.MethodGet, "/api/games", "", http.StatusOK},
		{http.MethodGet, "/api/games/stats", "", http.StatusOK},
		{http.MethodGet, "/api/games/1", "", http.StatusOK},
		{http.MethodPost, "/api/games/1/moves", `{"position":4}`, http.StatusOK},
		{http.MethodPost, "/api/games/1/reset", "", http.StatusOK},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			s.Engine().ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		s.Engine().ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestCORS(t *testing.T) {
	t.Run("allowed origin", func(t *testing.T) {
		s := newTestServer(t, "https://play.example.com")
		req := httptest.NewRequest(http.MethodOptions, "/api/games", nil)
		req.Header.Set("Origin", "https://play.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()

		s.Engine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://play.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		s := newTestServer(t, "https://play.example.com")
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		s.Engine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("wildcard", func(t *testing.T) {
		s := newTestServer(t)
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://anywhere.example.com")
		w := httptest.NewRecorder()

		s.Engine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecovery(t *testing.T) {
	s := newTestServer(t)
	s.Engine().GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"code":500,"extras":{"message":"Internal Server Error"}}`, w.Body.String())
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prevProp := otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTextMapPropagator(prevProp)
		_ = tp.Shutdown(context.Background())
	})

	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/games/42", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	w := httptest.NewRecorder()

	s.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	var serverSpan sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if span.Name() == "GET /api/games/:id" {
			serverSpan = span
		}
	}
	require.NotNil(t, serverSpan, "server span not recorded")
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", serverSpan.SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", serverSpan.Parent().SpanID().String())
}

func TestHTTPServer(t *testing.T) {
	s := newTestServer(t)

	srv := s.HTTPServer()

	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.WriteTimeout)
	assert.NotNil(t, srv.Handler)
}
