package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Log defaults to a plain stderr text handler so packages that log before
// Init runs (or in tests that never call it) don't need a nil check.
var Log = slog.New(slog.NewTextHandler(os.Stderr, nil))

// LevelTrace sits below slog's built-in Debug level. Kleene elimination
// (package kleene's Eliminate) can emit one record per elimination step on a
// large automaton; trace keeps that noise out of -v debug output.
const LevelTrace = slog.Level(-8)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
}

// Init initializes the global logger
func Init(level string, logFile string) error {
	// Parse log level
	var logLevel slog.Level
	switch level {
	case "trace":
		logLevel = LevelTrace
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelDebug
	}

	// Set up multi-writer (stdout + file)
	var writers []io.Writer
	writers = append(writers, os.Stdout)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}

	multiWriter := io.MultiWriter(writers...)

	// Create handler with custom options
	handler := slog.NewTextHandler(multiWriter, &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Shorten time format
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format("15:04:05"))
			}
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					if name, ok := levelNames[lvl]; ok {
						return slog.String(slog.LevelKey, name)
					}
				}
			}
			return a
		},
	})

	Log = slog.New(handler)
	slog.SetDefault(Log)

	return nil
}

// Trace logs at trace level, below debug. Used for per-step tracing of
// Kleene state elimination in package kleene.
func Trace(msg string, args ...any) {
	Log.Log(context.Background(), LevelTrace, msg, args...)
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Info logs at info level
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}
