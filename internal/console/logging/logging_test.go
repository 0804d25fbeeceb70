package logging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = SetRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

func TestHashRequestIDToFloat(t *testing.T) {
	a := HashRequestIDToFloat("req-1")
	assert.Equal(t, a, HashRequestIDToFloat("req-1"))
	assert.GreaterOrEqual(t, a, 0.0)
	assert.LessOrEqual(t, a, 1.0)
}

func TestRedactFields(t *testing.T) {
	fields := RedactFields(zap.String("api_key", "abc"), zap.String("agent_id", "a1"), zap.String("userEmail", "x@y"))
	assert.Equal(t, "***", fields[0].String)
	assert.Equal(t, "a1", fields[1].String)
	assert.Equal(t, "***", fields[2].String)
}

func TestEventLevelFromStatusCode(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, EventLevelFromStatusCode(200))
	assert.Equal(t, zapcore.WarnLevel, EventLevelFromStatusCode(404))
	assert.Equal(t, zapcore.ErrorLevel, EventLevelFromStatusCode(502))
}

func TestParseEventLoggingConfig(t *testing.T) {
	parsed := ParseEventLoggingConfig(DefaultEventLoggingConfig())
	assert.True(t, parsed.ExcludePaths["/metrics"])
	assert.True(t, parsed.IsErrorOnly("/v0/projects/p-1/draft"))
	assert.False(t, parsed.IsErrorOnly("/v0/projects/p-1"))
	require.NotNil(t, parsed.RedactRegex)
}

func TestLog_SamplesInfoButKeepsWarnings(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := SetSampled(SetRequestID(context.Background(), "req-9"), false)
	Log(ctx, base, zapcore.InfoLevel, "dropped")
	Log(ctx, base, zapcore.WarnLevel, "kept", zap.String("token", "t"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "***", entries[0].ContextMap()["token"])
}

func TestMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := ParseEventLoggingConfig(&EventLoggingConfig{
		SuccessSampleRate: 1,
		ExcludePaths:      "/v0/ping",
		ErrorOnlyPaths:    "/v0/projects/*/draft",
	})

	var seenID string
	handler := Middleware(cfg, zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		if r.URL.Path == "/v0/fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/v0/ping", "/v0/projects/p-1/draft", "/v0/catalog", "/v0/fail"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
		assert.Equal(t, rec.Header().Get(RequestIDHeader), seenID)
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/v0/catalog", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)

	req := httptest.NewRequest(http.MethodGet, "/v0/catalog", nil)
	req.Header.Set(RequestIDHeader, "given")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "given", rec.Header().Get(RequestIDHeader))
}
