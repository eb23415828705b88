package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegistry_RunByName(t *testing.T) {
	r := New()
	var ran int
	if err := r.Register("demo", "@every 1h", false, func(ctx context.Context) error {
		ran++
		return nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := r.Run("demo"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ran != 1 {
		t.Fatalf("handler ran %d times; want 1", ran)
	}

	status := r.Status()
	if len(status) != 1 || status[0].Name != "demo" {
		t.Fatalf("status = %+v", status)
	}
	if status[0].LastRun.IsZero() {
		t.Fatalf("last run not recorded")
	}
	if status[0].LastError != "" {
		t.Fatalf("unexpected last error %q", status[0].LastError)
	}
}

func TestRegistry_UnknownJob(t *testing.T) {
	r := New()
	if err := r.Run("missing"); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("err = %v; want ErrUnknownJob", err)
	}
}

func TestRegistry_DuplicateNameRejected(t *testing.T) {
	r := New()
	h := func(ctx context.Context) error { return nil }
	if err := r.Register("dup", "@every 1h", false, h); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("dup", "@every 1h", false, h); err == nil {
		t.Fatalf("duplicate name accepted")
	}
}

func TestRegistry_BadSpecRejected(t *testing.T) {
	r := New()
	if err := r.Register("bad", "not a cron spec", false, func(ctx context.Context) error { return nil }); err == nil {
		t.Fatalf("bad spec accepted")
	}
}

func TestRegistry_FailureRecordedAndReturned(t *testing.T) {
	r := New()
	boom := errors.New("cycle blew up")
	if err := r.Register("flaky", "@every 1h", false, func(ctx context.Context) error {
		return boom
	}); err != nil {
		t.Fatal(err)
	}

	err := r.Run("flaky")
	if err == nil {
		t.Fatalf("failed cycle reported success")
	}
	status := r.Status()
	if status[0].LastError == "" {
		t.Fatalf("last error not recorded")
	}

	// A later success clears the recorded error.
	r.jobs["flaky"].handler = func(ctx context.Context) error { return nil }
	if err := r.Run("flaky"); err != nil {
		t.Fatalf("recovered run: %v", err)
	}
	if got := r.Status()[0].LastError; got != "" {
		t.Fatalf("stale last error %q", got)
	}
}

func TestRegistry_OverlappingRunSkipped(t *testing.T) {
	r := New()
	release := make(chan struct{})
	started := make(chan struct{})
	if err := r.Register("slow", "@every 1h", false, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Run("slow")
	}()
	<-started

	if err := r.Run("slow"); !errors.Is(err, ErrJobRunning) {
		t.Fatalf("concurrent run err = %v; want ErrJobRunning", err)
	}

	close(release)
	wg.Wait()
}

func TestRegistry_BootJobRunsOnStart(t *testing.T) {
	r := New()
	var ran int
	if err := r.Register("boot", "@every 1h", true, func(ctx context.Context) error {
		ran++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("lazy", "@every 1h", false, func(ctx context.Context) error {
		t.Fatalf("non-boot job ran at start")
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	r.Start()
	defer r.Stop()

	if ran != 1 {
		t.Fatalf("boot job ran %d times at start; want 1", ran)
	}
}

func TestRegistry_StopCancelsJobContexts(t *testing.T) {
	r := New()
	done := make(chan struct{})
	started := make(chan struct{})
	if err := r.Register("ctx", "@every 1h", true, func(ctx context.Context) error {
		close(started)
		select {
		case <-ctx.Done():
			close(done)
			return ctx.Err()
		case <-time.After(5 * time.Second):
			t.Error("context not cancelled by Stop")
			return nil
		}
	}); err != nil {
		t.Fatal(err)
	}

	go r.Start()
	<-started
	r.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("job never observed cancellation")
	}
}
