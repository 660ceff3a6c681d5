// Command lifewheel runs a life-wheel interview in the terminal: it ranks
// the life categories through pairwise questions, collects keyword
// associations, and ranks the chosen representative keywords.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
