// Package logging provides structured logging for the evaluator, wrapping
// logrus with context-propagated trace/user ids and Agentlang-specific
// helpers (workflow invocation, resolver calls, RBAC denials).
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContextKey is the type for context keys this package reads/writes.
type ContextKey string

const (
	TraceIDKey ContextKey = "trace_id"
	UserIDKey  ContextKey = "user_id"
	ModuleKey  ContextKey = "module"
)

// Logger wraps logrus.Logger with Agentlang-specific fields and helpers.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a Logger for service, at level, in the given format
// ("json" or "text").
func New(service, level, format string) *Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}
	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger, service: service}
}

// NewFromEnv builds a Logger from LOG_LEVEL/LOG_FORMAT, defaulting to
// "info"/"json" when unset.
func NewFromEnv(service string) *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return New(service, level, format)
}

// WithContext returns a logrus.Entry carrying this service's name plus
// any trace/user/module ids found on ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("service", l.service)
	if traceID := ctx.Value(TraceIDKey); traceID != nil {
		entry = entry.WithField("trace_id", traceID)
	}
	if userID := ctx.Value(UserIDKey); userID != nil {
		entry = entry.WithField("user_id", userID)
	}
	if module := ctx.Value(ModuleKey); module != nil {
		entry = entry.WithField("module", module)
	}
	return entry
}

// WithFields returns an entry carrying fields plus this service's name.
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["service"] = l.service
	return l.Logger.WithFields(fields)
}

// NewTraceID returns a fresh trace id for a top-level workflow invocation.
func NewTraceID() string { return uuid.New().String() }

// WithTraceID/GetTraceID, WithUserID/GetUserID propagate identity through
// a context.Context the way every evaluator call threads one (spec.md
// §4.6's ActiveUser, §4.8's auth.user).

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func GetTraceID(ctx context.Context) string {
	v, _ := ctx.Value(TraceIDKey).(string)
	return v
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(UserIDKey).(string)
	return v
}

func WithModule(ctx context.Context, module string) context.Context {
	return context.WithValue(ctx, ModuleKey, module)
}

func GetModule(ctx context.Context) string {
	v, _ := ctx.Value(ModuleKey).(string)
	return v
}

// LogWorkflowInvocation logs one workflow run (spec.md §4.4 GLOSSARY,
// §4.7 trigger-invoked workflows).
func (l *Logger) LogWorkflowInvocation(ctx context.Context, workflow string, duration time.Duration, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"workflow":    workflow,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("workflow invocation failed")
		return
	}
	entry.Info("workflow invocation completed")
}

// LogResolverCall logs one resolver method call, the unit the resilience
// policy (spec.md §5) wraps.
func (l *Logger) LogResolverCall(ctx context.Context, resolverName, method string, duration time.Duration, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"resolver":    resolverName,
		"method":      method,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("resolver call failed")
		return
	}
	entry.Debug("resolver call completed")
}

// LogRBACDenial logs an RBAC gate rejection (spec.md §4.8 step 4).
func (l *Logger) LogRBACDenial(ctx context.Context, entity string, op string, userID string) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"entity": entity,
		"op":     op,
		"user":   userID,
	}).Warn("rbac denied operation")
}

// LogTriggerFailure logs a before/after trigger's failure (spec.md §4.7).
func (l *Logger) LogTriggerFailure(ctx context.Context, entity string, when string, op string, err error) {
	l.WithContext(ctx).WithError(err).WithFields(logrus.Fields{
		"entity": entity,
		"when":   when,
		"op":     op,
	}).Error("trigger failed")
}

// LogCircuitBreakerTransition logs a resolver's circuit-breaker state
// change (spec.md §5's gobreaker-backed envelope).
func (l *Logger) LogCircuitBreakerTransition(ctx context.Context, resolverName, from, to string) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"resolver": resolverName,
		"from":     from,
		"to":       to,
	}).Warn("circuit breaker state changed")
}

// WithError returns an entry carrying err's message alongside this
// service's name.
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{"service": l.service}).WithError(err)
}

var defaultLogger *Logger

// InitDefault initializes the process-wide default logger.
func InitDefault(service, level, format string) {
	defaultLogger = New(service, level, format)
}

// Default returns the process-wide logger, falling back to a basic one
// if InitDefault was never called.
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = New("agentlang", "info", "json")
	}
	return defaultLogger
}
