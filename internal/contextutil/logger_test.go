package contextutil

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := WithLogger(context.Background(), logger)

	if got := LoggerFromContext(ctx); got != logger {
		t.Errorf("LoggerFromContext() = %v, want stored logger", got)
	}
}

func TestLoggerFromContextDefault(t *testing.T) {
	if got := LoggerFromContext(context.Background()); got != slog.Default() {
		t.Errorf("LoggerFromContext() = %v, want default logger", got)
	}
}
