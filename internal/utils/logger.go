package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels accepted by the CLI and the configuration file.
const (
	LogLevelSilent  = "silent"
	LogLevelNormal  = "normal"
	LogLevelVerbose = "verbose"
	LogLevelDebug   = "debug"
)

// NewApplicationLogger constructs a zap logger configured for human-readable console output.
func NewApplicationLogger(logLevel string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel(logLevel))
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.LevelKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}

func zapLevel(logLevel string) zapcore.Level {
	switch logLevel {
	case LogLevelSilent:
		return zapcore.ErrorLevel
	case LogLevelVerbose:
		return zapcore.InfoLevel
	case LogLevelDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.WarnLevel
	}
}
