// Package run ties a blocking service loop to OS signal handling.
package run

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// shutdownGrace bounds how long WithSignals waits for start to return after
// a termination signal.
const shutdownGrace = 15 * time.Second

type Runner struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Runner {
	return &Runner{log: log}
}

// WithSignals runs start until it returns or SIGINT/SIGTERM arrives. On a
// signal the context passed to start is cancelled and the runner waits for
// start to drain; a loop that ignores the cancellation is abandoned after
// the grace period.
func (r *Runner) WithSignals(start func(ctx context.Context) error) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- start(ctx)
	}()

	select {
	case err := <-errCh:
		return r.exitCode(err)
	case <-ctx.Done():
		r.log.Info("shutdown signal received")
		select {
		case err := <-errCh:
			return r.exitCode(err)
		case <-time.After(shutdownGrace):
			r.log.Warn("shutdown grace period exceeded")
			return 1
		}
	}
}

func (r *Runner) exitCode(err error) int {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return 0
	}
	r.log.Error("service exited with error", zap.Error(err))
	return 1
}

func Exit(code int) {
	os.Exit(code)
}
