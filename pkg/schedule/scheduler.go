// Package schedule implements the §5 concurrency model: parallel across
// procedures, cooperative within. Each procedure's own analysis never
// suspends; the scheduler's only job is bounding how many procedures run at
// once and re-visiting a procedure whose callee summary wasn't published
// yet on a prior pass.
package schedule

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/diego200052/lockpair/pkg/astate"
	"github.com/diego200052/lockpair/pkg/ir"
)

// AnalyzeFunc analyzes one procedure to a fixpoint and returns its exit
// state. It may return a *ir.MissingSummaryError (wrapped) if some callee's
// summary was not yet available — the scheduler then discards that attempt
// and re-schedules proc on the next pass.
type AnalyzeFunc func(ctx context.Context, proc string) (astate.State, error)

// Scheduler runs AnalyzeFunc over a set of procedures with a configurable
// job count, publishing results to a SummaryStore as they complete and
// looping passes until every procedure converges or stops making progress.
type Scheduler struct {
	Jobs  int
	Store ir.SummaryStore
}

// Run analyzes every procedure in procs, re-scheduling any that hit a
// MissingSummaryError, until a full pass makes no further progress (the
// remaining procedures wait on each other's summaries, e.g. mutual
// recursion). Run then returns nil and publishes no summary for them.
func (s *Scheduler) Run(ctx context.Context, procs []string, analyze AnalyzeFunc) error {
	jobs := s.Jobs
	if jobs <= 0 {
		jobs = 1
	}

	pending := append([]string{}, procs...)
	for len(pending) > 0 {
		sem := semaphore.NewWeighted(int64(jobs))
		g, gctx := errgroup.WithContext(ctx)

		var mu sync.Mutex
		var blocked []string
		progress := false

		for _, proc := range pending {
			proc := proc
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			g.Go(func() error {
				defer sem.Release(1)

				state, err := analyze(gctx, proc)
				var missing *ir.MissingSummaryError
				if errors.As(err, &missing) {
					mu.Lock()
					blocked = append(blocked, proc)
					mu.Unlock()
					return nil
				}
				if err != nil {
					return err
				}

				mu.Lock()
				progress = true
				mu.Unlock()
				s.Store.Put(proc, state)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		if !progress && len(blocked) == len(pending) {
			// No procedure in this pass converged and every one of them is
			// still blocked on a missing summary: further passes cannot
			// help, stop here rather than spin.
			return nil
		}
		pending = blocked
	}
	return nil
}
