package log

import (
	"context"

	"github.com/rs/zerolog"
)

// GooseLogger routes goose's printf-style output through the zerolog logger
// carried by ctx, so migration chatter lands in the same stream as the rest
// of the process. Pass it to goose.SetLogger before running migrations.
type GooseLogger struct {
	zl zerolog.Logger
}

func NewGooseLoggerFromCtx(ctx context.Context) *GooseLogger {
	return &GooseLogger{zl: *FromCtx(ctx)}
}

// Printf reports applied migrations at info level.
func (g *GooseLogger) Printf(format string, v ...any) {
	g.zl.Info().Msgf(format, v...)
}

// Fatalf keeps goose's contract: the process must not continue on a broken
// schema.
func (g *GooseLogger) Fatalf(format string, v ...any) {
	g.zl.Fatal().Msgf(format, v...)
}
