package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/EgehanKilicarslan/mailroom/backend-go/internal/config"
)

func New(cfg *config.Config) *slog.Logger {
	logger := slog.New(NewHandler(cfg, os.Stdout))

	slog.SetDefault(logger)

	return logger
}

// NewHandler builds the handler used by New, writing to w
func NewHandler(cfg *config.Config, w io.Writer) slog.Handler {
	if cfg.IsProduction() {
		// JSON format
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: cfg.LogLevel,
		})
	}

	// Human-readable format
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(cfg.LogLevel),
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}
