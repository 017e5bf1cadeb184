package log

import (
	"context"
	"log/slog"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogPaymentRecorded logs a payment applied to a resident.
func (sl *StructuredLogger) LogPaymentRecorded(ctx context.Context, buildingID, residentID string, months int, amount int64, method, paidThrough string) {
	fields := NewFields().
		WithBuilding(buildingID).
		WithPayment(residentID, months, amount, method, paidThrough).
		WithOperation(OpRecordPayment).
		WithComponent(ComponentLedger)

	sl.logger.LogFields(ctx, slog.LevelInfo, "Payment recorded", fields)
}

// LogExport logs a generated export document.
func (sl *StructuredLogger) LogExport(ctx context.Context, buildingID, format string, rows int) {
	fields := NewFields().
		WithBuilding(buildingID).
		WithExport(format, rows).
		WithOperation(OpExport).
		WithComponent(ComponentExport)

	sl.logger.LogFields(ctx, slog.LevelInfo, "Report exported", fields)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.LogFields(ctx, slog.LevelError, msg, allFields)
}
