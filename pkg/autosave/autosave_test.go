package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	values []string
	active int32
	maxPar int32
	hold   time.Duration
	err    error
}

func (r *recorder) save(_ context.Context, v string) error {
	n := atomic.AddInt32(&r.active, 1)
	defer atomic.AddInt32(&r.active, -1)
	for {
		m := atomic.LoadInt32(&r.maxPar)
		if n <= m || atomic.CompareAndSwapInt32(&r.maxPar, m, n) {
			break
		}
	}
	time.Sleep(r.hold)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
	return r.err
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestScheduleCoalescesBurst(t *testing.T) {
	r := &recorder{}
	s := New(r.save, Options{Delay: 30 * time.Millisecond})

	for _, v := range []string{"a", "ab", "abc"} {
		s.Schedule(v)
		time.Sleep(5 * time.Millisecond)
	}
	waitFor(t, func() bool { return len(r.got()) == 1 })
	time.Sleep(60 * time.Millisecond)

	got := r.got()
	if len(got) != 1 || got[0] != "abc" {
		t.Fatalf("expected single write of latest value, got %v", got)
	}
	if s.Pending() {
		t.Fatal("nothing should be pending")
	}
}

func TestWritesNeverOverlap(t *testing.T) {
	r := &recorder{hold: 40 * time.Millisecond}
	s := New(r.save, Options{Delay: 5 * time.Millisecond})

	s.Schedule("first")
	waitFor(t, func() bool { return atomic.LoadInt32(&r.active) == 1 })
	s.Schedule("second")
	s.Schedule("third")

	waitFor(t, func() bool { return len(r.got()) == 2 })
	got := r.got()
	if got[0] != "first" || got[1] != "third" {
		t.Fatalf("unexpected writes %v", got)
	}
	if m := atomic.LoadInt32(&r.maxPar); m != 1 {
		t.Fatalf("writes overlapped: %d concurrent", m)
	}
}

func TestFlushWritesImmediately(t *testing.T) {
	r := &recorder{}
	s := New(r.save, Options{Delay: time.Hour})

	s.Schedule("draft")
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := r.got(); len(got) != 1 || got[0] != "draft" {
		t.Fatalf("unexpected writes %v", got)
	}
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("empty flush: %v", err)
	}
	if got := r.got(); len(got) != 1 {
		t.Fatalf("empty flush wrote: %v", got)
	}
}

func TestCloseFlushesAndRejects(t *testing.T) {
	r := &recorder{}
	s := New(r.save, Options{Delay: time.Hour})

	s.Schedule("last words")
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := r.got(); len(got) != 1 || got[0] != "last words" {
		t.Fatalf("unexpected writes %v", got)
	}
	s.Schedule("ignored")
	if s.Pending() {
		t.Fatal("schedule after close must be dropped")
	}
	if err := s.Flush(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestTimerErrorsReachCallback(t *testing.T) {
	boom := errors.New("boom")
	r := &recorder{err: boom}
	errs := make(chan error, 1)
	s := New(r.save, Options{Delay: 5 * time.Millisecond, OnError: func(err error) { errs <- err }})

	s.Schedule("x")
	select {
	case err := <-errs:
		if !errors.Is(err, boom) {
			t.Fatalf("unexpected error %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error callback not called")
	}
}

func TestDiscardDropsPendingValue(t *testing.T) {
	r := &recorder{}
	s := New(r.save, Options{Delay: 20 * time.Millisecond})

	s.Schedule("stale")
	s.Discard()
	if s.Pending() {
		t.Fatal("value still pending after discard")
	}
	time.Sleep(60 * time.Millisecond)
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := r.got(); len(got) != 0 {
		t.Fatalf("discarded value was written: %v", got)
	}

	s.Schedule("fresh")
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := r.got(); len(got) != 1 || got[0] != "fresh" {
		t.Fatalf("unexpected writes %v", got)
	}
}
