// Package srv ties long-running components to the process lifecycle.
package srv

import (
	"context"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

// Service is anything started with the process and stopped with it: the HTTP
// server, the task worker, and connection cleanups wrapped by NewCleanup.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches each service in its own goroutine and exits the
// process if any of them fails to start.
func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, s := range services {
		go func() {
			if err := s.Start(ctx); err != nil {
				logger.Fatal().Err(err).Msgf("%T failed to start", s)
			}
		}()
	}
}

// ShutdownServices blocks until ctx is cancelled, then shuts the services
// down in reverse start order so consumers stop before the connections they
// depend on are closed. Shutdown errors are logged, not propagated.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	logger := log.FromCtx(ctx)
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
	}
}
