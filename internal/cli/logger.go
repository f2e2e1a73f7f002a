package cli

import (
	"io"
	"log/slog"

	"github.com/aretw0/nest/internal/logging"
)

// NewLogger builds the logger for a command from its --log-level and
// --log-json flags. An empty level silences logging.
func NewLogger(w io.Writer, level string, json bool) (*slog.Logger, error) {
	if level == "" {
		return logging.NewNop(), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(w, lvl, json), nil
}
