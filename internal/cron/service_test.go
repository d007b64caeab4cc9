package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/eventdesk-backend/pkg/logger"
)

type fakeLock struct {
	held       bool
	acquireErr error
	releases   int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type countingJob struct {
	name string
	err  error
	runs int
}

func (c *countingJob) Name() string { return c.name }

func (c *countingJob) Run(context.Context) error {
	c.runs++
	return c.err
}

type fakeRecorder struct {
	observed  []string
	successes []string
	failures  []string
}

func (f *fakeRecorder) ObserveDuration(job string, _ time.Duration) {
	f.observed = append(f.observed, job)
}
func (f *fakeRecorder) IncSuccess(job string) { f.successes = append(f.successes, job) }
func (f *fakeRecorder) IncFailure(job string) { f.failures = append(f.failures, job) }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func newTestService(t *testing.T, lock Lock, recorder jobRecorder, jobs ...Job) *Service {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: registry,
		Lock:     lock,
		Metrics:  recorder,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRunOnceContinuesAfterJobFailure(t *testing.T) {
	ok := &countingJob{name: "outbox-retention"}
	broken := &countingJob{name: "dlq-retention", err: errors.New("boom")}
	lock := &fakeLock{}
	recorder := &fakeRecorder{}
	svc := newTestService(t, lock, recorder, broken, ok)

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if ok.runs != 1 || broken.runs != 1 {
		t.Fatalf("expected both jobs to run once, got %d/%d", ok.runs, broken.runs)
	}
	if len(recorder.observed) != 2 {
		t.Fatalf("expected 2 duration samples, got %d", len(recorder.observed))
	}
	if len(recorder.successes) != 1 || recorder.successes[0] != "outbox-retention" {
		t.Fatalf("unexpected successes %v", recorder.successes)
	}
	if len(recorder.failures) != 1 || recorder.failures[0] != "dlq-retention" {
		t.Fatalf("unexpected failures %v", recorder.failures)
	}
	if lock.held || lock.releases != 1 {
		t.Fatalf("expected lock released once")
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &countingJob{name: "outbox-retention"}
	lock := &fakeLock{held: true}
	svc := newTestService(t, lock, nil, job)

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job must not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatalf("lock held elsewhere must not be released")
	}
}

func TestRunOnceReturnsLockError(t *testing.T) {
	job := &countingJob{name: "outbox-retention"}
	svc := newTestService(t, &fakeLock{acquireErr: errors.New("redis down")}, nil, job)

	if err := svc.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected lock error")
	}
	if job.runs != 0 {
		t.Fatalf("job must not run after lock error")
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	job := &countingJob{name: "outbox-retention"}
	svc := newTestService(t, &fakeLock{}, nil, job)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("canceled context should skip jobs, ran %d", job.runs)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	registry, _ := NewRegistry()
	cases := map[string]ServiceParams{
		"logger":   {Registry: registry, Lock: &fakeLock{}},
		"registry": {Logger: testLogger(), Lock: &fakeLock{}},
		"lock":     {Logger: testLogger(), Registry: registry},
	}
	for name, params := range cases {
		if _, err := NewService(params); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	svc, err := NewService(ServiceParams{Logger: testLogger(), Registry: registry, Lock: &fakeLock{}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if svc.interval != fallbackInterval {
		t.Fatalf("expected fallback interval, got %v", svc.interval)
	}
}
