package worker

import "context"

// forEachSequential runs fn for each job in order, stopping on
// cancellation.
func forEachSequential[J any](ctx context.Context, jobs []J, fn func(ctx context.Context, job J) error) error {
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(ctx, job); err != nil {
			return err
		}
	}
	return nil
}
