// Package sigctx ties process lifetime to termination signals.
package sigctx

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// NotifyContext is done on SIGINT, SIGTERM or SIGQUIT, or when the returned
// cancel is called.
func NotifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
}

// ShutdownContext bounds graceful shutdown. It is detached from the signal
// context, which is already done by the time shutdown starts.
func ShutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
