package pipe

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/relloyd/country-metrics/logger"
)

// WithSignalCancel returns a context that is cancelled on SIGINT or SIGTERM.
// Call the returned stop func to release the signal handler.
func WithSignalCancel(ctx context.Context, log logger.Logger) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case x := <-c:
			if isatty.IsTerminal(os.Stdout.Fd()) {
				fmt.Println() // clean CLI look n feel.
			}
			log.Info("Caught ", x.String(), ", shutting down...")
			cancel()
		case <-done:
		}
	}()
	return ctx, func() {
		signal.Stop(c)
		close(done)
		cancel()
	}
}
