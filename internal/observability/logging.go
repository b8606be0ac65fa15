// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide structured logger. It is a no-op until InitLogger runs.
var Logger = zap.NewNop()

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// Context keys for request-scoped log fields.
const (
	RequestIDKey LogContextKey = "request_id"
	UserIDKey    LogContextKey = "user_id"
	TraceIDKey   LogContextKey = "trace_id"
)

// LoggingConfig selects the logger shape.
type LoggingConfig struct {
	Level string
	Env   string
	// File enables a rotating JSON log file in addition to stdout.
	File string
}

// InitLogger builds the global Logger. Development gets zap's console
// config; every other environment logs JSON.
func InitLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level := parseLevel(cfg.Level)

	if cfg.Env == "" || cfg.Env == "development" {
		devCfg := zap.NewDevelopmentConfig()
		devCfg.Level = zap.NewAtomicLevelAt(level)
		l, err := devCfg.Build()
		if err != nil {
			return nil, err
		}
		Logger = l
		return l, nil
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.Lock(os.Stdout), level),
	}
	if cfg.File != "" {
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     7,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, level))
	}

	Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return Logger, nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// L returns the global logger annotated with the request-scoped fields found in ctx.
func L(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return Logger
	}
	fields := make([]zap.Field, 0, 3)
	if rid, ok := ctx.Value(RequestIDKey).(string); ok && rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if uid, ok := ctx.Value(UserIDKey).(uint); ok && uid != 0 {
		fields = append(fields, zap.Uint("user_id", uid))
	}
	if tid, ok := ctx.Value(TraceIDKey).(string); ok && tid != "" {
		fields = append(fields, zap.String("trace_id", tid))
	}
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}
