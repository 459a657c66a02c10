package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// Middleware creates HTTP middleware that adds a logger to the request context.
// Request-scoped middleware below it derives its logger with FromContext.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: ComponentApp,
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

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.Logger.InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs the completion of an HTTP request
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogAccountCreated logs successful account creation
func (sl *StructuredLogger) LogAccountCreated(ctx context.Context, id, accountType, balance string) {
	fields := NewFields().
		WithAccount(id, accountType).
		WithOperation(OpCreate).
		WithComponent(ComponentAccount).
		ToSlice()

	fields = append(fields, FieldBalance, balance)

	sl.logger.Logger.InfoContext(ctx, "Account created successfully", fields...)
}

// LogAccountDeleted logs the outcome of a delete request
func (sl *StructuredLogger) LogAccountDeleted(ctx context.Context, id string, deleted bool) {
	fields := NewFields().
		WithAccount(id, "").
		WithOperation(OpDelete).
		WithComponent(ComponentAccount)
	fields[FieldSuccess] = deleted

	level := slog.LevelInfo
	msg := "Account deleted"
	if !deleted {
		level = slog.LevelWarn
		msg = "Account deletion refused by backend"
	}
	sl.logger.Logger.Log(ctx, level, msg, fields.ToSlice()...)
}

// LogTransactionCreated logs successful transaction creation
func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, accountID, kind string, amount float64) {
	fields := NewFields().
		WithTransaction(accountID, kind, amount).
		WithOperation(OpCreate).
		WithComponent(ComponentTransaction)

	sl.logger.Logger.InfoContext(ctx, "Transaction created successfully", fields.ToSlice()...)
}

// LogRefetchFailed logs an invalidation that did not reload after a successful mutation
func (sl *StructuredLogger) LogRefetchFailed(ctx context.Context, views []string, err error) {
	fields := NewFields().
		WithViews(views).
		WithError(err).
		WithOperation(OpRefetch).
		WithComponent(ComponentDataSource)

	sl.logger.Logger.WarnContext(ctx, "Refetch after mutation failed", fields.ToSlice()...)
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

	sl.logger.Logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
