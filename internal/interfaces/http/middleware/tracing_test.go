package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func findSpan(sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

func TestTracingDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing("test-service", false))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracingEnabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing("test-service", true))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	span := findSpan(sr, "GET /test")
	require.NotNil(t, span, "HTTP span not found")
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracingCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupSpanRecorder(t)

	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing("test-service", true))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	span := findSpan(sr, "GET /test")
	require.NotNil(t, span, "HTTP span not found")

	found := false
	for _, attr := range span.Attributes() {
		if attr.Key == "request_id" {
			assert.Equal(t, "req-abc-123", attr.Value.AsString())
			found = true
		}
	}
	assert.True(t, found, "request_id attribute not found in span")
}

func TestTracingMarksServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing("test-service", true))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	span := findSpan(sr, "GET /test")
	require.NotNil(t, span, "HTTP span not found")
	assert.Equal(t, codes.Error, span.Status().Code)
}

func TestTracingLeavesClientErrorsUnset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing("test-service", true))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	span := findSpan(sr, "GET /test")
	require.NotNil(t, span, "HTTP span not found")
	assert.NotEqual(t, codes.Error, span.Status().Code)
}
