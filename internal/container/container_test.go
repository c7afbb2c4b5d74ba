package container_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/linkshort/internal/container"
	"github.com/serroba/linkshort/internal/messaging"
	"github.com/serroba/linkshort/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newInjector(t *testing.T, opts *container.Options) *do.Injector {
	t.Helper()

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.ServerPackages(injector)

	t.Cleanup(func() {
		_ = injector.Shutdown()
	})

	return injector
}

func defaultOptions() *container.Options {
	return &container.Options{
		Port:        8888,
		Prefix:      "https://short.url/",
		TokenLength: 6,
		MaxAttempts: 8,
		LogFormat:   "console",
		LogLevel:    "error",
		RateLimit:   true,
	}
}

func TestLoggerPackage(t *testing.T) {
	t.Run("builds json logger", func(t *testing.T) {
		opts := defaultOptions()
		opts.LogFormat = "json"

		logger, err := do.Invoke[*zap.Logger](newInjector(t, opts))

		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		opts := defaultOptions()
		opts.LogFormat = "xml"

		_, err := do.Invoke[*zap.Logger](newInjector(t, opts))

		assert.ErrorContains(t, err, "unknown log format")
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		opts := defaultOptions()
		opts.LogLevel = "loud"

		_, err := do.Invoke[*zap.Logger](newInjector(t, opts))

		assert.Error(t, err)
	})
}

func TestRedisPackage_Disabled(t *testing.T) {
	_, err := do.Invoke[*container.RedisClient](newInjector(t, defaultOptions()))

	assert.ErrorContains(t, err, "redis address not configured")
}

func TestStorePackage(t *testing.T) {
	opts := defaultOptions()
	opts.Prefix = "http://s/"
	opts.TokenLength = 3

	links := do.MustInvoke[*shortener.Store](newInjector(t, opts))

	assert.Equal(t, "http://s/6I4", links.Shorten("hello"))
}

func TestServerWiring(t *testing.T) {
	injector := newInjector(t, defaultOptions())

	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	group := do.MustInvoke[*messaging.ConsumerGroup](injector)
	require.NoError(t, group.Start(context.Background()))

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		return rec
	}

	created := serve(http.MethodPost, "/shorten", `{"url":"https://example.com/a"}`)
	require.Equal(t, http.StatusCreated, created.Code)
	assert.NotEmpty(t, created.Header().Get("X-Request-ID"))
	assert.Equal(t, "https://short.url/1SbPJ6", created.Header().Get("Location"))

	redirect := serve(http.MethodGet, "/r/1SbPJ6", "")
	assert.Equal(t, http.StatusMovedPermanently, redirect.Code)
	assert.Equal(t, "https://example.com/a", redirect.Header().Get("Location"))

	healthy := serve(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, healthy.Code)

	var status struct {
		Status string `json:"status"`
		Redis  string `json:"redis"`
		Links  int    `json:"links"`
	}

	require.NoError(t, json.Unmarshal(healthy.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "disabled", status.Redis)
	assert.Equal(t, 1, status.Links)

	openapi := serve(http.MethodGet, "/openapi.json", "")
	assert.Equal(t, http.StatusOK, openapi.Code)
	assert.Contains(t, openapi.Body.String(), "/shorten")
}
