// Package logging wires log/slog for the label checker: a text handler for the
// console, a JSON handler for the weekly rotating log file, and package-level
// helpers usable before initialization.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options controls InitLogger.
type Options struct {
	Dir            string
	RetentionWeeks int
	MaxFileSize    int64
	ConsoleLevel   slog.Level
	// Console receives the text handler output. Defaults to os.Stdout.
	Console io.Writer
}

type LoggingService struct {
	Logger *slog.Logger
	file   *RotatingFile
}

var DefaultLoggingService *LoggingService

// InitLogger installs the global logger. When the log directory cannot be used
// it falls back to console-only logging and reports the problem there.
func InitLogger(opts Options) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: opts.ConsoleLevel})

	svc := &LoggingService{}
	file, err := OpenRotatingFile(opts.Dir, opts.RetentionWeeks, opts.MaxFileSize)
	if err != nil {
		svc.Logger = slog.New(consoleHandler)
		svc.Logger.Error("File logging disabled", "error", err)
	} else {
		svc.file = file
		fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: GetFileLogLevel()})
		svc.Logger = slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}})
	}

	DefaultLoggingService = svc
	slog.SetDefault(svc.Logger)
}

// Close flushes and closes the rotating file, if any.
func Close() error {
	if DefaultLoggingService == nil || DefaultLoggingService.file == nil {
		return nil
	}
	return DefaultLoggingService.file.Close()
}

// Logger returns the global logger, or a stderr fallback when not initialized.
func Logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return fallback()
	}
	return DefaultLoggingService.Logger
}

func fallback() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
