// Package autosave coalesces bursts of edits into single writes.
//
// A Saver holds one pending value. Schedule replaces it and restarts the idle
// timer; when the timer fires the pending value is written. Writes never
// overlap: a value scheduled while a write is running is written after it
// completes.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/outliner/pkg/logger"
)

// DefaultDelay is the idle period before a scheduled value is written.
const DefaultDelay = 500 * time.Millisecond

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("autosave: closed")

// SaveFunc persists a value.
type SaveFunc func(ctx context.Context, value string) error

// Options tune a Saver.
type Options struct {
	// Delay is the idle window. Zero means DefaultDelay.
	Delay time.Duration
	// OnError receives failures of timer driven writes.
	OnError func(error)
	Log     logrus.FieldLogger
}

// Saver is a single-slot debounced writer.
type Saver struct {
	save    SaveFunc
	delay   time.Duration
	onError func(error)
	log     logrus.FieldLogger

	mu      sync.Mutex
	pending *string
	timer   *time.Timer
	closed  bool

	// writeMu is held for the duration of every write.
	writeMu sync.Mutex
}

// New returns a Saver writing through save.
func New(save SaveFunc, opts Options) *Saver {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	return &Saver{
		save:    save,
		delay:   opts.Delay,
		onError: opts.OnError,
		log:     logger.Or(opts.Log),
	}
}

// Schedule replaces the pending value and restarts the idle timer.
func (s *Saver) Schedule(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.log.Warn("autosave: schedule after close dropped")
		return
	}
	s.pending = &value
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// Pending reports whether a value is waiting to be written.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Discard drops the pending value, if any, and stops the idle timer. A write
// already in flight is not affected.
func (s *Saver) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Saver) fire() {
	if err := s.write(context.Background()); err != nil {
		s.log.WithError(err).Warn("autosave: write failed")
		if s.onError != nil {
			s.onError(err)
		}
	}
}

// write takes the pending value, if any, and saves it while holding writeMu.
func (s *Saver) write(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	value := s.pending
	s.pending = nil
	s.mu.Unlock()

	if value == nil {
		return nil
	}
	s.log.WithField("bytes", len(*value)).Debug("autosave: writing")
	return s.save(ctx, *value)
}

// Flush cancels the timer and writes the pending value now. It waits for a
// write already in flight.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.write(ctx)
}

// Close flushes and stops accepting values.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.write(ctx)
}
