package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-foundation/framework/config"
)

// New builds the application logger. Production or LOG_FORMAT=json gives
// JSON output; anything else gives a coloured console logger on stderr.
func New(cfg config.LogConfig, appEnv string) (*zap.Logger, error) {
	level := ParseLevel(cfg.Level)

	if appEnv == "production" || cfg.Format == "json" {
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		return zc.Build()
	}
	return NewConsole(os.Stderr, level), nil
}

// NewConsole creates a development-style logger writing to w.
func NewConsole(w io.Writer, level zapcore.Level) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core, zap.AddCaller())
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
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
