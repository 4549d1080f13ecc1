// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// BrokerIDKey is the context key for the authenticated broker ID
	BrokerIDKey contextKey = "broker_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter creates a logger writing to w. Tests pass io.Discard.
func NewWithWriter(env string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return NewWithWriter("test", io.Discard)
}

// WithContext returns a logger with request_id and broker_id extracted from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("request_id", requestID))}
	}
	if brokerID, ok := ctx.Value(BrokerIDKey).(string); ok && brokerID != "" {
		newLogger = newLogger.WithBrokerID(brokerID)
	}
	return newLogger
}

// WithBrokerID returns a logger with the broker ID attached
func (l *Logger) WithBrokerID(brokerID string) *Logger {
	return &Logger{Logger: l.With(slog.String("broker_id", brokerID))}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// HTTPError logs an HTTP error
func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// ScoreBatch logs the outcome of a batch scoring run
func (l *Logger) ScoreBatch(brokerID string, scored, skipped int, marketRate float64) {
	l.Info("score_batch",
		slog.String("broker_id", brokerID),
		slog.Int("scored", scored),
		slog.Int("skipped", skipped),
		slog.Float64("market_rate", marketRate),
	)
}

// RateAlert logs a rate monitoring alert
func (l *Logger) RateAlert(kind, mortgageID string, marketRate, targetRate float64) {
	l.Info("rate_alert",
		slog.String("kind", kind),
		slog.String("mortgage_id", mortgageID),
		slog.Float64("market_rate", marketRate),
		slog.Float64("target_rate", targetRate),
	)
}
