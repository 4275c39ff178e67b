package aggregator

import (
	"context"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/devpulse/pkg/provider"
)

// task is one provider fetch. run stores its typed result on success
// and returns the fetch error otherwise.
type task struct {
	name provider.Name
	run  func(ctx context.Context) error
}

// Outcome is the settled result of one provider fetch. Err is nil on
// success; a non-nil Err means only this provider's data is absent.
type Outcome struct {
	Provider provider.Name
	Err      error
}

// Failed reports whether the provider fetch failed
func (o Outcome) Failed() bool { return o.Err != nil }

// runAll executes all tasks concurrently and waits for every one of
// them to settle. One task failing never cancels or hides the others:
// the returned slice always has one outcome per task, in input order.
// Each task gets its own bounded timeout so a hanging provider can't
// stall the barrier.
func runAll(ctx context.Context, timeout time.Duration, tasks []task) []Outcome {
	outcomes := make([]Outcome, len(tasks))

	var g errgroup.Group
	for i, t := range tasks {
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			outcomes[i] = Outcome{Provider: t.name, Err: t.run(tctx)}
			return nil
		})
	}
	_ = g.Wait() // tasks record their own errors, the group never fails

	for _, o := range outcomes {
		if o.Failed() {
			lgr.Printf("[WARN] provider %s failed: %v", o.Provider, o.Err)
		}
	}
	return outcomes
}
