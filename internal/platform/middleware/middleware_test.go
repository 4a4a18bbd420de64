// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geodrop/internal/platform/constants"
	"github.com/taibuivan/geodrop/internal/platform/ctxutil"
)

type corsConfig struct {
	development bool
	origins     []string
}

func (c corsConfig) IsDevelopment() bool      { return c.development }
func (c corsConfig) AllowedOrigins() []string { return c.origins }

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

/*
TestRequestID verifies that a request ID is generated or propagated.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "abc-123", seen)
}

/*
TestCORS covers development, allow-listed and foreign origins.
*/
func TestCORS(t *testing.T) {
	tests := []struct {
		name      string
		cfg       corsConfig
		origin    string
		wantAllow bool
	}{
		{"development_any_origin", corsConfig{development: true}, "https://anything.example", true},
		{"listed_origin", corsConfig{origins: []string{"https://app.example"}}, "https://app.example", true},
		{"foreign_origin", corsConfig{origins: []string{"https://app.example"}}, "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/points", nil)
			request.Header.Set(constants.HeaderOrigin, tt.origin)
			recorder := httptest.NewRecorder()

			CORS(tt.cfg)(okHandler).ServeHTTP(recorder, request)

			if tt.wantAllow {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

/*
TestCORS_Preflight verifies that OPTIONS requests short-circuit with 204.
*/
func TestCORS_Preflight(t *testing.T) {
	request := httptest.NewRequest(http.MethodOptions, "/points", nil)
	request.Header.Set(constants.HeaderOrigin, "https://app.example")
	recorder := httptest.NewRecorder()

	CORS(corsConfig{development: true})(okHandler).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

/*
TestPanicRecovery verifies that a panicking handler yields a JSON 500.
*/
func TestPanicRecovery(t *testing.T) {
	handler := PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

/*
TestIPLimiter verifies the per-IP burst and isolation between clients.
*/
func TestIPLimiter(t *testing.T) {
	limiter := newIPLimiter(1, 2)

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.2"))
}

/*
TestRateLimit verifies that the middleware answers 429 once the bucket is empty.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := RateLimit(ctx)(okHandler)

	var lastStatus int
	for range constants.DefaultRateLimitBurst + 10 {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRealIP, "192.0.2.7")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		lastStatus = recorder.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastStatus)
}

/*
TestRealIP covers proxy headers and the remote address fallback.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "198.51.100.1:5555"
	assert.Equal(t, "198.51.100.1", RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "203.0.113.10")
	assert.Equal(t, "203.0.113.10", RealIP(request))
}

/*
TestMetrics verifies the middleware passes requests through under a chi router.
*/
func TestMetrics(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Metrics())
	router.Get("/points", okHandler)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/points", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}
