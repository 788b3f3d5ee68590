package lg

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
)

var meterKey = contextKey{"meter"}

// Meter returns the meter stored by Init, or the global meter.
func Meter(ctx context.Context) metric.Meter {
	if m := fromContext[contextKey, metric.Meter](ctx, meterKey); m != nil {
		return m
	}
	return global.Meter("")
}

func initMetrics(ctx context.Context, name string) context.Context {
	return toContext(ctx, meterKey, global.Meter(name))
}
