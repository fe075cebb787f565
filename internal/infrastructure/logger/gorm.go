package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold is the duration above which a statement is
// logged as slow
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// GormLogger writes GORM statements to zap. Each entry carries the request,
// actor and trace ids found in the statement context, so SQL lines can be
// joined with the HTTP entry that caused them.
type GormLogger struct {
	logger                    *zap.Logger
	logLevel                  gormlogger.LogLevel
	slowThreshold             time.Duration
	ignoreRecordNotFoundError bool
	showParams                bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the slow statement threshold; zero disables it
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slowThreshold = threshold
	}
}

// WithIgnoreRecordNotFoundError controls whether lookups that find nothing
// are logged as errors
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.ignoreRecordNotFoundError = ignore
	}
}

// WithSQLParams writes bound values into logged SQL. Off by default: worker
// CBUs and DNIs travel as parameters.
func WithSQLParams(show bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.showParams = show
	}
}

// NewGormLogger creates a GORM logger backed by zap
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		logger:                    zapLogger.Named("gorm"),
		logLevel:                  level,
		slowThreshold:             DefaultSlowQueryThreshold,
		ignoreRecordNotFoundError: true,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.logLevel = level
	return &next
}

// ParamsFilter implements gormlogger.ParamsFilter. GORM calls it before
// Trace to decide which bound values end up in the SQL text.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if l.showParams {
		return sql, params
	}
	return sql, nil
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Info {
		l.withContext(ctx).Zap().Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Warn {
		l.withContext(ctx).Zap().Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Error {
		l.withContext(ctx).Zap().Sugar().Errorf(msg, data...)
	}
}

// Trace logs one executed statement.
// Duplicate keys are logged as warnings: the numbering and ledger writers
// resolve them by retrying, so they are not failures on their own.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold

	switch {
	case err != nil && l.ignoreRecordNotFoundError && errors.Is(err, gormlogger.ErrRecordNotFound):
		if !slow {
			return
		}
	case err != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		if l.logLevel >= gormlogger.Warn {
			l.withContext(ctx).Warn("SQL conflict", l.statementFields(fc, elapsed, zap.Error(err))...)
		}
		return
	case err != nil:
		if l.logLevel >= gormlogger.Error {
			l.withContext(ctx).Error("SQL error", l.statementFields(fc, elapsed, zap.Error(err))...)
		}
		return
	}

	switch {
	case slow && l.logLevel >= gormlogger.Warn:
		l.withContext(ctx).Warn("Slow SQL", l.statementFields(fc, elapsed, zap.Duration("threshold", l.slowThreshold))...)
	case l.logLevel >= gormlogger.Info:
		l.withContext(ctx).Debug("SQL", l.statementFields(fc, elapsed)...)
	}
}

func (l *GormLogger) withContext(ctx context.Context) *ContextLogger {
	if ctx == nil {
		ctx = context.Background()
	}
	return WithLogger(ctx, l.logger)
}

func (l *GormLogger) statementFields(fc func() (string, int64), elapsed time.Duration, extra ...zap.Field) []zap.Field {
	sql, rows := fc()
	fields := make([]zap.Field, 0, 3+len(extra))
	fields = append(fields,
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	return append(fields, extra...)
}

// MapGormLogLevel maps a configured level name to a GORM level.
// Unknown names fall back to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent", "off":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
