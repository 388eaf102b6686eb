package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// forEach runs fn for every job, concurrently with bounded parallelism and
// a request rate limit unless the pool is sequential. fn handles its own
// per-trial failures; an error returned from fn aborts the remaining jobs.
func forEach[J any](ctx context.Context, pool Pool, jobs []J, fn func(ctx context.Context, job J) error) error {
	if pool.NoAsync || pool.MaxConcurrent <= 1 || len(jobs) <= 1 {
		return forEachSequential(ctx, jobs, fn)
	}

	slog.Info("starting concurrent processing",
		"jobs", len(jobs),
		"max_concurrent", pool.MaxConcurrent,
		"rate_limit_rpm", pool.RateLimitPerMin)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if pool.RateLimitPerMin > 0 {
		// Rate limiter: tokens per second = RPM / 60.
		limiter = rate.NewLimiter(rate.Limit(float64(pool.RateLimitPerMin)/60.0), 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pool.MaxConcurrent)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
			return fn(gctx, job)
		})
	}
	return g.Wait()
}
