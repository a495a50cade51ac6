package latency

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultTestURL is the probe target the daemon fetches through each
// node.
const DefaultTestURL = "https://www.gstatic.com/generate_204"

// DefaultTimeoutMS bounds a single delay probe at the daemon.
const DefaultTimeoutMS = 5000

// Prober issues one delay probe against a named node. ok is false when
// the daemon reported no measurement.
type Prober interface {
	Delay(ctx context.Context, name, testURL string, timeoutMS int) (delayMS int, ok bool, err error)
}

// Result holds the probe outcome for a single target. Exactly one of
// the three states applies: a measured delay (OK), a daemon-reported
// timeout (!OK, Err nil), or a failed request (Err set).
type Result struct {
	Target  string
	DelayMS int
	OK      bool
	Err     error
}

// RunnerConfig holds configuration for the Runner.
type RunnerConfig struct {
	Workers   int64
	TestURL   string
	TimeoutMS int
}

// Runner fans delay probes out over a bounded worker pool. One bad node
// never aborts the batch: failures are captured per target.
type Runner struct {
	prober Prober
	config RunnerConfig
}

// NewRunner creates a new Runner.
func NewRunner(prober Prober, cfg RunnerConfig) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.TestURL == "" {
		cfg.TestURL = DefaultTestURL
	}
	if cfg.TimeoutMS <= 0 {
		cfg.TimeoutMS = DefaultTimeoutMS
	}
	return &Runner{prober: prober, config: cfg}
}

// Run probes every target and returns results in input order, so output
// correlates back to the requesting target regardless of worker count.
func (r *Runner) Run(ctx context.Context, targets []string) []Result {
	results := make([]Result, len(targets))

	sem := semaphore.NewWeighted(r.config.Workers)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				results[idx] = Result{Target: name, Err: err}
				return
			}
			defer sem.Release(1)

			delayMS, ok, err := r.prober.Delay(ctx, name, r.config.TestURL, r.config.TimeoutMS)
			results[idx] = Result{Target: name, DelayMS: delayMS, OK: ok, Err: err}
		}(i, target)
	}

	wg.Wait()
	return results
}
