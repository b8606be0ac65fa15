package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/observability"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ZapGormLogger routes GORM logging through zap and records query latency.
type ZapGormLogger struct {
	logger *zap.Logger
	Config logger.Config
}

// NewZapGormLogger returns a GORM logger that ignores ErrRecordNotFound and
// warns on statements slower than slowThreshold.
func NewZapGormLogger(l *zap.Logger, level logger.LogLevel, slowThreshold time.Duration) *ZapGormLogger {
	return &ZapGormLogger{
		logger: l.Named("gorm"),
		Config: logger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	}
}

// LogMode sets the logging level and returns a new interface instance.
func (l *ZapGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newlogger := *l
	newlogger.Config.LogLevel = level
	return &newlogger
}

func (l *ZapGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Info {
		l.logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *ZapGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Warn {
		l.logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *ZapGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Error {
		l.logger.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs SQL statements according to the level and slow threshold.
func (l *ZapGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	observability.DatabaseQueryLatency.WithLabelValues(statementVerb(sql)).Observe(elapsed.Seconds())

	if l.Config.LogLevel <= logger.Silent {
		return
	}

	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && l.Config.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.Error("GORM query error", append(fields, zap.Error(err))...)
	case elapsed > l.Config.SlowThreshold && l.Config.SlowThreshold != 0 && l.Config.LogLevel >= logger.Warn:
		l.logger.Warn("GORM slow query", fields...)
	case l.Config.LogLevel >= logger.Info:
		l.logger.Debug("GORM query", fields...)
	}
}

func statementVerb(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexByte(sql, ' '); i > 0 {
		sql = sql[:i]
	}
	switch v := strings.ToLower(sql); v {
	case "select", "insert", "update", "delete":
		return v
	default:
		return "other"
	}
}
