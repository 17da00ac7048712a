package cmd

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// loggerFromCtx returns the logger installed by the root command, or the
// process default when none was installed.
func loggerFromCtx(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

func ctxWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
