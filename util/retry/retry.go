package retry

import (
	"context"
	"time"

	"github.com/uhlik-sinovate-development/SIN-core/ulogger"
)

// Retry calls fn until it succeeds, the retry budget is exhausted, or ctx is
// canceled. Backoff is linear (BackoffDurationType * BackoffMultiplier *
// attempt) unless ExponentialBackoff is set, in which case it grows by
// BackoffFactor per attempt up to MaxBackoff.
func Retry[T any](ctx context.Context, logger ulogger.Logger, fn func() (T, error), opts ...Options) (T, error) {
	options := NewSetOptions(opts...)

	var (
		result T
		err    error
	)

	for attempt := 1; ; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}

		if !options.InfiniteRetry && attempt >= options.RetryCount {
			return result, err
		}

		wait := backoffFor(options, attempt)
		logger.Warnf("%sattempt %d failed, retrying in %s: %v", options.Message, attempt, wait, err)

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func backoffFor(o *SetOptions, attempt int) time.Duration {
	if !o.ExponentialBackoff {
		return o.BackoffDurationType * time.Duration(o.BackoffMultiplier) * time.Duration(attempt)
	}

	wait := o.BackoffDurationType
	for i := 1; i < attempt; i++ {
		wait = time.Duration(float64(wait) * o.BackoffFactor)
		if wait >= o.MaxBackoff {
			return o.MaxBackoff
		}
	}

	return wait
}
