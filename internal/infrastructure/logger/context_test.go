package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestWithContext(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := context.Background()
	ctxWithLogger := WithContext(ctx, logger)

	retrievedLogger := FromContext(ctxWithLogger)
	assert.NotNil(t, retrievedLogger)
}

func TestFromContext_NotFound(t *testing.T) {
	ctx := context.Background()
	logger := FromContext(ctx)

	// Should return a no-op logger
	assert.NotNil(t, logger)
}

func TestWithRequestID(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := context.Background()
	requestID := "req-123"

	newCtx, newLogger := WithRequestID(ctx, logger, requestID)

	assert.NotNil(t, newCtx)
	assert.NotNil(t, newLogger)
	assert.Equal(t, requestID, GetRequestID(newCtx))
}

func TestGetRequestID_NotFound(t *testing.T) {
	ctx := context.Background()
	requestID := GetRequestID(ctx)
	assert.Empty(t, requestID)
}

func TestContextKeys(t *testing.T) {
	// Verify context keys are unique
	assert.NotEqual(t, LoggerKey, RequestIDKey)
}

// newCaptureLogger returns a JSON logger writing into the given buffer
func newCaptureLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey: "msg",
		LevelKey:   "level",
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

func TestL_InjectsRequestID(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newCaptureLogger(&buf)

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, baseLogger, "req-abc")

	L(ctx).Info("hello")

	output := buf.String()
	assert.Contains(t, output, `"msg":"hello"`)
	assert.Contains(t, output, `"request_id":"req-abc"`)
}

func TestL_NoContextFields(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newCaptureLogger(&buf)

	ctx := WithContext(context.Background(), baseLogger)
	L(ctx).Info("plain")

	output := buf.String()
	assert.Contains(t, output, `"msg":"plain"`)
	assert.NotContains(t, output, `"request_id"`)
}

func TestL_MissingLoggerIsNoop(t *testing.T) {
	// Must not panic when the context carries no logger
	L(context.Background()).Info("dropped")
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newCaptureLogger(&buf)

	cl := WithLogger(context.Background(), baseLogger)
	cl.With(zap.String("component", "billing")).Info("scoped")

	output := buf.String()
	assert.Contains(t, output, `"msg":"scoped"`)
	assert.Contains(t, output, `"component":"billing"`)
}

func TestContextLogger_Zap(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := newCaptureLogger(&buf)

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, baseLogger, "req-zap")

	L(ctx).Zap().Warn("warned")

	output := buf.String()
	assert.Contains(t, output, `"msg":"warned"`)
	assert.Contains(t, output, `"request_id":"req-zap"`)
}
