package logging

import (
	"context"

	"go.uber.org/zap"
)

type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

type sampledKeyType struct{}

var sampledKey = sampledKeyType{}

// NewLogger creates a named zap production logger.
func NewLogger(name string) *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return logger.Named(name)
}

// WithRequestID returns a logger with request_id from context.
func WithRequestID(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if reqID, ok := ctx.Value(requestIDKey).(string); ok && reqID != "" {
		return logger.With(zap.String("request_id", reqID))
	}
	return logger
}

// L is shorthand for WithRequestID.
func L(ctx context.Context, base *zap.Logger) *zap.Logger {
	return WithRequestID(ctx, base)
}

// SetRequestID stores request_id in context (call once in middleware).
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves request_id from context.
func GetRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// SetSampled records the sampling decision for the request in ctx.
func SetSampled(ctx context.Context, sampled bool) context.Context {
	return context.WithValue(ctx, sampledKey, sampled)
}

// ShouldLog reports whether info/debug events of this request are sampled in.
// Contexts without a decision are always logged.
func ShouldLog(ctx context.Context) bool {
	if sampled, ok := ctx.Value(sampledKey).(bool); ok {
		return sampled
	}
	return true
}
