package log

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewCliLogger creates a logger for CLI usage:
// info messages go to the stdout, warnings and errors to the stderr.
// Debug messages are included if verbose = true.
func NewCliLogger(stdout io.Writer, stderr io.Writer, verbose bool) Logger {
	var cores []zapcore.Core
	cores = append(cores, stdoutCore(stdout, verbose))
	cores = append(cores, stderrCore(stderr))
	return loggerFromZap(zap.New(zapcore.NewTee(cores...)))
}

// stdoutCore writes debug/info messages, without log prefixes.
func stdoutCore(stdout io.Writer, verbose bool) zapcore.Core {
	minLevel := InfoLevel
	if verbose {
		minLevel = DebugLevel
	}

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "message",
		LineEnding: zapcore.DefaultLineEnding,
	})

	return zapcore.NewCore(
		encoder,
		zapcore.AddSync(stdout),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= minLevel && l < WarnLevel
		}),
	)
}

// stderrCore writes warnings and errors, with a level prefix.
func stderrCore(stderr io.Writer) zapcore.Core {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "message",
		LevelKey:         "level",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
	})

	return zapcore.NewCore(
		encoder,
		zapcore.AddSync(stderr),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= WarnLevel
		}),
	)
}
