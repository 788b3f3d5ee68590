// Package lg bootstraps logging, tracing and metrics for the relay tools.
package lg

import (
	"context"
	"log"

	"go.uber.org/multierr"
)

// Init configures the process wide logger and tracer. The returned func
// flushes and stops them in reverse order of setup.
func Init(ctx context.Context, name string) (context.Context, func() error) {
	stop := [2]func() error{
		initLogger(name),
	}
	ctx, stop[1] = initTracing(ctx, name)
	ctx = initMetrics(ctx, name)

	reverse(stop[:])

	return ctx, func() error {
		log.Println("flushing logs...")
		errs := make([]error, len(stop))
		for i, fn := range stop {
			if fn != nil {
				errs[i] = fn()
			}
		}
		log.Println("all stopped.")
		return multierr.Combine(errs...)
	}
}

func reverse[T any](s []T) {
	first, last := 0, len(s)-1
	for first < last {
		s[first], s[last] = s[last], s[first]
		first++
		last--
	}
}
