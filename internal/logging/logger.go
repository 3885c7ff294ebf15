package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output). Silence matters for
// the MCP stdio transport, where stray stdout output would corrupt the
// protocol stream.
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "REDFISH_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks REDFISH_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		// Unknown level - use info as default when explicitly set to something
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from the REDFISH_LOG_LEVEL
// environment variable. This is the recommended way to initialize logging
// for commands that want silent mode by default.
func InitializeFromEnv() error {
	return Initialize("")
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogHTTPRequest logs an outgoing BMC request. Only header names are logged,
// never values, so session tokens stay out of log files.
func LogHTTPRequest(method, url string, headerKeys []string, bodySize int) {
	Info("HTTP request",
		zap.String("method", method),
		zap.String("url", url),
		zap.Strings("headers", headerKeys),
		zap.Int("body_size", bodySize),
	)
}

// LogHTTPResponse logs a BMC response summary. The body preview is only
// emitted at debug level.
func LogHTTPResponse(method, url string, statusCode int, elapsedMs int64, body []byte) {
	Info("HTTP response",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", statusCode),
		zap.Int64("elapsed_ms", elapsedMs),
		zap.Int("length", len(body)),
	)
	if GetLogger().Core().Enabled(zapcore.DebugLevel) {
		Debug("HTTP response preview",
			zap.String("url", url),
			zap.String("body", bodyPreview(body)),
		)
	}
}

// bodyPreview truncates a response body for debug logging.
func bodyPreview(body []byte) string {
	const max = 500
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
