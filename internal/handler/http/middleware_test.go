package http_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	handlerhttp "covid-dashboard/internal/handler/http"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLogging_PassesThrough(t *testing.T) {
	t.Parallel()

	handler := handlerhttp.Logging(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusTeapot, rr.Code)
	require.Equal(t, "short and stout", rr.Body.String())
}

func TestRecover_CatchesPanic(t *testing.T) {
	t.Parallel()

	handler := handlerhttp.Recover(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "boom")
}

func TestLimitRequestBody(t *testing.T) {
	t.Parallel()

	handler := handlerhttp.LimitRequestBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	small := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, small)
	require.Equal(t, http.StatusOK, rr.Code)

	large := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, large)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	t.Parallel()

	rl := handlerhttp.NewRateLimiter(1, 3)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/charts/series.png", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, "request %d within burst", i+1)
	}

	req := httptest.NewRequest(http.MethodGet, "/charts/series.png", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestRateLimiter_PerClientIP(t *testing.T) {
	t.Parallel()

	rl := handlerhttp.NewRateLimiter(1, 1)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/charts/top.png", nil)
	first.RemoteAddr = "10.0.0.1:12345"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, first)
	require.Equal(t, http.StatusOK, rr.Code)

	// Same client exhausted its burst.
	again := httptest.NewRequest(http.MethodGet, "/charts/top.png", nil)
	again.RemoteAddr = "10.0.0.1:54321"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, again)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	// A different client has its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/charts/top.png", nil)
	other.RemoteAddr = "10.0.0.2:12345"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, other)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimiter_DisabledPassesThrough(t *testing.T) {
	t.Parallel()

	rl := handlerhttp.NewRateLimiter(0, 0)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/charts/series.png", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}
}
