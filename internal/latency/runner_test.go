package latency

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// fakeProber serves canned probe outcomes keyed by node name.
type fakeProber struct {
	delays map[string]int
	fails  map[string]error

	mu    sync.Mutex
	calls []string
}

func (f *fakeProber) Delay(ctx context.Context, name, testURL string, timeoutMS int) (int, bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if err, ok := f.fails[name]; ok {
		return 0, false, err
	}
	delay, ok := f.delays[name]
	if !ok {
		return 0, false, nil // daemon-reported timeout
	}
	return delay, true, nil
}

func TestRunnerPreservesInputOrder(t *testing.T) {
	prober := &fakeProber{delays: map[string]int{"n1": 30, "n2": 10, "n3": 20}}
	runner := NewRunner(prober, RunnerConfig{Workers: 3})

	results := runner.Run(context.Background(), []string{"n1", "n2", "n3"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"n1", "n2", "n3"} {
		if results[i].Target != want {
			t.Fatalf("result %d: expected target %q, got %q", i, want, results[i].Target)
		}
	}
	if results[1].DelayMS != 10 || !results[1].OK {
		t.Fatalf("expected n2 at 10 ms, got %+v", results[1])
	}
}

func TestRunnerToleratesMidBatchFailure(t *testing.T) {
	probeErr := errors.New("connection refused")
	prober := &fakeProber{
		delays: map[string]int{"n1": 12, "n3": 34},
		fails:  map[string]error{"n2": probeErr},
	}
	runner := NewRunner(prober, RunnerConfig{Workers: 1})

	results := runner.Run(context.Background(), []string{"n1", "n2", "n3"})

	if len(prober.calls) != 3 {
		t.Fatalf("expected all 3 targets probed, got %v", prober.calls)
	}
	if results[0].Err != nil || !results[0].OK || results[0].DelayMS != 12 {
		t.Fatalf("n1: unexpected result %+v", results[0])
	}
	if !errors.Is(results[1].Err, probeErr) {
		t.Fatalf("n2: expected probe error, got %+v", results[1])
	}
	if results[2].Err != nil || !results[2].OK || results[2].DelayMS != 34 {
		t.Fatalf("n3: unexpected result %+v", results[2])
	}
}

func TestRunnerReportsDaemonTimeouts(t *testing.T) {
	prober := &fakeProber{delays: map[string]int{"fast": 5}}
	runner := NewRunner(prober, RunnerConfig{})

	results := runner.Run(context.Background(), []string{"fast", "dead"})
	if !results[0].OK {
		t.Fatalf("expected fast to succeed, got %+v", results[0])
	}
	if results[1].OK || results[1].Err != nil {
		t.Fatalf("expected dead to be a timeout, got %+v", results[1])
	}
}

func TestRunnerOrderStableUnderParallelism(t *testing.T) {
	prober := &fakeProber{delays: map[string]int{}}
	var targets []string
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("node-%02d", i)
		targets = append(targets, name)
		prober.delays[name] = 100 - i
	}

	runner := NewRunner(prober, RunnerConfig{Workers: 8})
	results := runner.Run(context.Background(), targets)

	for i, target := range targets {
		if results[i].Target != target {
			t.Fatalf("result %d: expected %q, got %q", i, target, results[i].Target)
		}
		if results[i].DelayMS != 100-i {
			t.Fatalf("result %d: delay mismatch %d", i, results[i].DelayMS)
		}
	}
}

func TestRunnerDefaults(t *testing.T) {
	runner := NewRunner(&fakeProber{}, RunnerConfig{})
	if runner.config.Workers != 4 {
		t.Fatalf("expected default workers 4, got %d", runner.config.Workers)
	}
	if runner.config.TestURL != DefaultTestURL {
		t.Fatalf("expected default test URL, got %q", runner.config.TestURL)
	}
	if runner.config.TimeoutMS != DefaultTimeoutMS {
		t.Fatalf("expected default timeout, got %d", runner.config.TimeoutMS)
	}
}
