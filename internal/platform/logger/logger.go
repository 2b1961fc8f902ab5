package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New returns the application logger. Production emits JSON; anything else
// gets the tinted console handler for readability during development.
func New() *slog.Logger {
	if os.Getenv("ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		TimeFormat: time.Kitchen,
	}))
}
