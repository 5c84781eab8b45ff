package coordinator

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome is the per-identity result of a dispatched request.
type Outcome struct {
	Identity string
	Answer   string
	Err      error
}

// DispatchOne runs a single request to completion and wraps its result.
func (c *Coordinator) DispatchOne(ctx context.Context, req Request) Outcome {
	answer, err := c.Process(ctx, req)
	return Outcome{Identity: req.Identity, Answer: answer, Err: err}
}

// DispatchAll runs one independent coordinated run per request in parallel
// and waits for all of them. Result ordering matches input ordering. The
// semantics are all-settled: one identity's failure (including Busy) never
// cancels or affects another's run. Options.MaxConcurrent, when positive,
// bounds how many runs execute simultaneously.
func (c *Coordinator) DispatchAll(ctx context.Context, reqs []Request) []Outcome {
	outcomes := make([]Outcome, len(reqs))

	g := new(errgroup.Group)
	if c.maxConcurrent > 0 {
		g.SetLimit(c.maxConcurrent)
	}
	for i, req := range reqs {
		g.Go(func() error {
			outcomes[i] = c.DispatchOne(ctx, req)
			return nil
		})
	}
	// Workers never return errors; failures are captured per outcome.
	_ = g.Wait()

	return outcomes
}
