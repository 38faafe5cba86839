package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	app := drift.New()

	var seen string
	app.Use(RequestLogger(logger))
	app.Get("/ping", func(c *drift.Context) {
		seen = GetRequestID(c)
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"path":"/ping"`)
	assert.Contains(t, buf.String(), seen)
}

func TestRequestLogger_KeepsIncomingRequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	app := drift.New()

	app.Use(RequestLogger(logger))
	app.Get("/ping", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))
}

func TestRequestLogger_ReplacesMalformedRequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	app := drift.New()

	app.Use(RequestLogger(logger))
	app.Get("/ping", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "not a uuid\n")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.NotEqual(t, "not a uuid\n", rec.Header().Get(RequestIDHeader))
}

func TestTimeout_SetsDeadline(t *testing.T) {
	app := drift.New()

	var deadline time.Time
	var hasDeadline bool
	app.Use(Timeout(time.Minute))
	app.Get("/slow", func(c *drift.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/slow", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestTimeout_Disabled(t *testing.T) {
	app := drift.New()

	var ctx context.Context
	app.Use(Timeout(0))
	app.Get("/slow", func(c *drift.Context) {
		ctx = c.Request.Context()
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))

	_, ok := ctx.Deadline()
	assert.False(t, ok)
}
