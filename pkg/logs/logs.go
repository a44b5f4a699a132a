package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Alijeyrad/optica_backend/config"
	"github.com/Alijeyrad/optica_backend/pkg/constants"
	"github.com/Alijeyrad/optica_backend/pkg/reqctx"
)

// New builds a logger from config, fanning out to stdout and a rotated file.
func New(cfg *config.Config) *slog.Logger {
	return slog.New(reqctx.NewLogHandler(NewHandler(cfg, writers(cfg)...))).With(
		slog.String("service", cfg.Observability.ServiceName),
		slog.String("version", cfg.Observability.ServiceVersion),
		slog.String("env", cfg.Server.Environment),
	)
}

// NewHandler picks JSON outside development or when asked for, text otherwise.
func NewHandler(cfg *config.Config, ws ...io.Writer) slog.Handler {
	isDev := strings.EqualFold(cfg.Server.Environment, "development")
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Logging.Level),
		AddSource: isDev,
	}

	w := io.MultiWriter(ws...)
	if strings.EqualFold(cfg.Logging.Format, "json") || !isDev {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func writers(cfg *config.Config) []io.Writer {
	var ws []io.Writer

	// stdout is the fallback when nothing else is configured
	if cfg.Logging.Output.Stdout || !cfg.Logging.Output.File.Enabled {
		ws = append(ws, os.Stdout)
	}

	if cfg.Logging.Output.File.Enabled {
		ws = append(ws, &lumberjack.Logger{
			Filename:   cfg.Logging.Output.File.Path,
			MaxSize:    cfg.Logging.Output.File.MaxSizeMB,
			MaxBackups: cfg.Logging.Output.File.MaxBackups,
			MaxAge:     cfg.Logging.Output.File.MaxAgeDays,
			Compress:   cfg.Logging.Output.File.Compress,
		})
	}

	return ws
}

func Default() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: false,
	})
	return slog.New(h).With(slog.String("service", constants.ServiceName))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
