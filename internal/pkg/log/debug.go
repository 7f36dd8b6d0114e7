package log

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// debugLogger implements the DebugLogger interface,
// messages are visible through the *Messages methods.
type debugLogger struct {
	*zapLogger
	recorded *observer.ObservedLogs
}

func NewDebugLogger() DebugLogger {
	core, recorded := observer.New(DebugLevel)
	return &debugLogger{
		zapLogger: loggerFromZap(zap.New(core)),
		recorded:  recorded,
	}
}

func (l *debugLogger) With(args ...any) Logger {
	return &debugLogger{
		zapLogger: l.zapLogger.With(args...).(*zapLogger),
		recorded:  l.recorded,
	}
}

// Truncate clears all recorded messages.
func (l *debugLogger) Truncate() {
	l.recorded.TakeAll()
}

func (l *debugLogger) AllMessages() string {
	return l.messages(func(zapcore.Level) bool { return true })
}

func (l *debugLogger) DebugMessages() string {
	return l.messages(func(level zapcore.Level) bool { return level == DebugLevel })
}

func (l *debugLogger) InfoMessages() string {
	return l.messages(func(level zapcore.Level) bool { return level == InfoLevel })
}

func (l *debugLogger) WarnMessages() string {
	return l.messages(func(level zapcore.Level) bool { return level == WarnLevel })
}

func (l *debugLogger) ErrorMessages() string {
	return l.messages(func(level zapcore.Level) bool { return level == ErrorLevel })
}

func (l *debugLogger) WarnAndErrorMessages() string {
	return l.messages(func(level zapcore.Level) bool { return level >= WarnLevel })
}

func (l *debugLogger) messages(match func(level zapcore.Level) bool) string {
	var out strings.Builder
	for _, entry := range l.recorded.All() {
		if match(entry.Level) {
			out.WriteString(strings.ToUpper(entry.Level.String()))
			out.WriteString("  ")
			out.WriteString(entry.Message)
			out.WriteString("\n")
		}
	}
	return out.String()
}
