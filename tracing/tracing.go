// Package tracing wraps gocore's stat tree and an otel span around a unit
// of work, the same combined instrumentation pattern used across this
// codebase's services.
package tracing

import (
	"context"

	"github.com/ordishs/gocore"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("infinitynode")

var rootStat = gocore.NewStat("infinitynode")

type statKey struct{}

// StartTracing opens both a gocore.Stat span and an otel span named
// operation, returning the derived context and a deferrable stop function.
func StartTracing(ctx context.Context, operation string, parentStat ...*gocore.Stat) (context.Context, *gocore.Stat, func()) {
	parent := rootStat
	if len(parentStat) > 0 && parentStat[0] != nil {
		parent = parentStat[0]
	}

	stat := parent.NewStat(operation)
	ctx = context.WithValue(ctx, statKey{}, stat)
	ctx, span := tracer.Start(ctx, operation)

	start := gocore.CurrentTime()

	return ctx, stat, func() {
		stat.AddTime(start)
		span.End()
	}
}
