package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/gmchicks/storefront-backend/pkg/logger"
)

type fakeLock struct {
	held     bool
	released int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.released++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

type recordingMetrics struct {
	success   map[string]int
	failure   map[string]int
	durations int
}

func (r *recordingMetrics) ObserveDuration(string, time.Duration) { r.durations++ }
func (r *recordingMetrics) IncSuccess(job string)                 { r.success[job]++ }
func (r *recordingMetrics) IncFailure(job string)                 { r.failure[job]++ }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "success"}
	bad := &testJob{name: "fail", err: errors.New("boom")}
	registry, err := NewRegistry(bad, ok)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	lock := &fakeLock{}
	metrics := &recordingMetrics{success: map[string]int{}, failure: map[string]int{}}
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: registry, Lock: lock, Metrics: metrics})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if ok.runs != 1 || bad.runs != 1 {
		t.Fatalf("expected each job to run once, got ok=%d fail=%d", ok.runs, bad.runs)
	}
	if metrics.success["success"] != 1 || metrics.failure["fail"] != 1 || metrics.durations != 2 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
	if lock.held || lock.released != 1 {
		t.Fatalf("lock not released: %+v", lock)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	registry, _ := NewRegistry(job)
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: registry, Lock: &fakeLock{held: true}})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job ran without the lock")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "job"}
	registry, _ := NewRegistry(job)
	service, err := NewService(ServiceParams{Logger: testLogger(), Registry: registry, Lock: &fakeLock{}, Interval: time.Hour})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
