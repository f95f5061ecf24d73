package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter(level zapcore.Level) (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(level)
	r := gin.New()
	r.Use(GinMiddleware(zap.New(core)))
	return r, recorded
}

func requestLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message == "request" {
			return entry
		}
	}
	t.Fatal("no request log entry recorded")
	return observer.LoggedEntry{}
}

func TestGinMiddlewareLogsRequest(t *testing.T) {
	r, recorded := newObservedRouter(zapcore.InfoLevel)
	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping?q=abc", nil)
	req.Header.Set("User-Agent", "test-agent/1.0")
	r.ServeHTTP(w, req)

	entry := requestLog(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := make(map[string]zapcore.Field)
	for _, f := range entry.Context {
		fields[f.Key] = f
	}
	assert.Equal(t, "GET", fields["method"].String)
	assert.Equal(t, "/ping", fields["path"].String)
	assert.Contains(t, fields["query"].String, "q=abc")
	assert.Equal(t, "test-agent/1.0", fields["user_agent"].String)
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "latency")
	assert.Contains(t, fields, "client_ip")
}

func TestGinMiddlewareCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	r.Use(GinMiddleware(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))

	entry := requestLog(t, recorded)
	var requestID string
	for _, f := range entry.Context {
		if f.Key == "request_id" {
			requestID = f.String
		}
	}
	assert.Equal(t, "req-123", requestID)
}

func TestGinMiddlewareLevels(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		r, recorded := newObservedRouter(zapcore.InfoLevel)
		status := tt.status
		r.GET("/x", func(c *gin.Context) { c.Status(status) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))

		assert.Equal(t, tt.level, requestLog(t, recorded).Level)
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		r.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Equal(t, "panic recovered", logs[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	r, _ := newObservedRouter(zapcore.InfoLevel)

	var got *zap.Logger
	r.GET("/ping", func(c *gin.Context) {
		got = GetGinLogger(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	assert.NotNil(t, got)
}

func TestGetGinLoggerWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var got *zap.Logger
	r.GET("/ping", func(c *gin.Context) {
		got = GetGinLogger(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))

	require.NotNil(t, got)
	assert.NotPanics(t, func() { got.Info("noop") })
}
