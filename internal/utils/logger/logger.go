package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"tidemark/internal/config"
)

// New builds the process logger: colored text for local, JSON otherwise.
func New(env string) *slog.Logger {
	return newLogger(env, os.Stdout)
}

// NewWithFile writes the same records to a size-rotated file instead of stdout.
func NewWithFile(env, path string) *slog.Logger {
	if path == "" {
		return New(env)
	}
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	if env == config.EnvLocal {
		env = config.EnvDev
	}
	return newLogger(env, w)
}

func newLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case config.EnvLocal, "":
		return setupPrettySlog()
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

func setupPrettySlog() *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
	}
	return slog.New(opts.NewPrettyHandler(os.Stdout))
}

// Err is the attribute used for errors across the code base.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
