/*-------------------------------------------------------------------------
 *
 * log_context.go
 *    Log context helpers for structured logging
 *
 * Provides helpers for consistent structured logging with request_id,
 * user_id, form_id, and webhook_id fields across all components.
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/metrics/log_context.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	formIDKey    contextKey = "form_id"
	webhookIDKey contextKey = "webhook_id"
)

/* WithRequestIDLogContext adds the request ID to log context */
func WithRequestIDLogContext(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

/* WithUserIDLogContext adds the acting user ID to log context */
func WithUserIDLogContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID.String())
}

/* WithFormIDLogContext adds the form ID to log context */
func WithFormIDLogContext(ctx context.Context, formID uuid.UUID) context.Context {
	return context.WithValue(ctx, formIDKey, formID.String())
}

/* WithWebhookIDLogContext adds the webhook ID to log context */
func WithWebhookIDLogContext(ctx context.Context, webhookID string) context.Context {
	if webhookID == "" {
		return ctx
	}
	return context.WithValue(ctx, webhookIDKey, webhookID)
}

/* GetRequestIDFromContext gets the request ID from context */
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func stringFromContext(ctx context.Context, key contextKey) string {
	if id, ok := ctx.Value(key).(string); ok {
		return id
	}
	return ""
}

/* LoggerFromContext creates a zerolog logger with fields from context */
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	logger := log.Logger

	if id := stringFromContext(ctx, requestIDKey); id != "" {
		logger = logger.With().Str("request_id", id).Logger()
	}
	if id := stringFromContext(ctx, userIDKey); id != "" {
		logger = logger.With().Str("user_id", id).Logger()
	}
	if id := stringFromContext(ctx, formIDKey); id != "" {
		logger = logger.With().Str("form_id", id).Logger()
	}
	if id := stringFromContext(ctx, webhookIDKey); id != "" {
		logger = logger.With().Str("webhook_id", id).Logger()
	}

	return logger
}

/* LogWithContext logs a message with context fields */
func LogWithContext(ctx context.Context, level zerolog.Level, message string, fields map[string]interface{}) {
	logger := LoggerFromContext(ctx)
	event := logger.WithLevel(level)

	for key, value := range fields {
		event = event.Interface(key, value)
	}

	event.Msg(message)
}

/* DebugWithContext logs a debug message with context */
func DebugWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.DebugLevel, message, fields)
}

/* InfoWithContext logs an info message with context */
func InfoWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.InfoLevel, message, fields)
}

/* WarnWithContext logs a warning message with context */
func WarnWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.WarnLevel, message, fields)
}

/* ErrorWithContext logs an error message with context */
func ErrorWithContext(ctx context.Context, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	LogWithContext(ctx, zerolog.ErrorLevel, message, fields)
}
