// Package log provides structured logging with agent context.
//
// Logger is the non-sugared variant for the capture and delivery hot
// paths; SugaredLogger adds printf-style convenience for CLI and debug
// surfaces. Obtain the latter with Logger.Sugar().
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger emits JSON log entries. Every entry carries the agent
// identity, and service loops add a service dimension via WithService.
type Logger struct {
	zap *zap.Logger
}

// SugaredLogger wraps zap's sugared API for printf-style call sites.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a logger tagged with the agent identity, writing
// to os.Stderr.
func NewLogger(agentID string) *Logger {
	return newLoggerWithWriter(agentID, os.Stderr)
}

// WithOutput swaps the destination, rebuilding the core around w.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return &Logger{zap: l.zap.WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))}
}

// WithService returns a logger whose entries carry a service field
// (recording, screenshots, activity, sweep, control).
func (l *Logger) WithService(service string) *Logger {
	return &Logger{zap: l.zap.With(zap.String("service", service))}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
}

func newLoggerWithWriter(agentID string, w io.Writer) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)

	var contextFields []zap.Field
	if agentID != "" {
		contextFields = append(contextFields, zap.String("agent_id", agentID))
	}

	return &Logger{zap: zap.New(core).With(contextFields...)}
}

// Debug logs at debug level with optional structured fields.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs at info level with optional structured fields.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs at warn level with optional structured fields.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs at error level with optional structured fields.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}

// Sugar trades structured fields for printf convenience.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Debugf logs at debug level with a format string.
func (s *SugaredLogger) Debugf(template string, args ...any) {
	s.sugar.Debugf(template, args...)
}

// Infof logs at info level with a format string.
func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}

// Warnf logs at warn level with a format string.
func (s *SugaredLogger) Warnf(template string, args ...any) {
	s.sugar.Warnf(template, args...)
}

// Errorf logs at error level with a format string.
func (s *SugaredLogger) Errorf(template string, args ...any) {
	s.sugar.Errorf(template, args...)
}

// With appends key-value pairs to the logger context.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
