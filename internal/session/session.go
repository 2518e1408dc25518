// Package session runs the mirroring loop: it gates captured input on
// source-window focus, relays mouse events immediately, and batches
// keyboard events behind a debounce window before replaying them to every
// target in turn.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/winmirror/winmirror/internal/config"
	"github.com/winmirror/winmirror/internal/geom"
	"github.com/winmirror/winmirror/internal/logging"
	"github.com/winmirror/winmirror/internal/match"
	"github.com/winmirror/winmirror/internal/model"
	"github.com/winmirror/winmirror/internal/platform"
	"github.com/winmirror/winmirror/internal/vk"
)

// Options tune the debounce/flush behavior.
type Options struct {
	// Debounce is the quiet period after the last key event before the
	// pending batch is flushed.
	Debounce time.Duration

	// Settle is the pause after forcing a target to the foreground,
	// giving it time to gain focus before the batch replays.
	Settle time.Duration

	// Poll is the flush loop's check interval.
	Poll time.Duration

	// KeyStrategy is config.KeyStrategyInject or config.KeyStrategyPost.
	KeyStrategy string
}

type keyEvent struct {
	kind platform.EventKind
	vk   uint16
}

// Session owns the mutable mirroring state for one run. All shared state
// (the pending batch and its activity timestamp) lives behind one mutex;
// the target list is recomputed fresh before every dispatch, never
// cached.
type Session struct {
	set    *match.Set
	dir    platform.Directory
	in     platform.Inputter
	opts   Options
	logger *slog.Logger

	mu           sync.Mutex
	pending      []keyEvent
	lastActivity time.Time

	// sleep is indirected so tests can run without real settle pauses.
	sleep func(time.Duration)
}

func New(set *match.Set, dir platform.Directory, in platform.Inputter, opts Options) *Session {
	return &Session{
		set:    set,
		dir:    dir,
		in:     in,
		opts:   opts,
		logger: logging.Component("session"),
		sleep:  time.Sleep,
	}
}

// Run consumes capture events until the context is canceled or the event
// channel closes. The flush loop runs alongside it.
func (s *Session) Run(ctx context.Context, events <-chan platform.Event) error {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.flushLoop(ctx)
	}()
	// cancel runs before the wait, so a closed event channel also stops
	// the flush loop.
	defer wg.Wait()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.Handle(ev)
		}
	}
}

// Handle processes one captured event. Mouse events dispatch immediately;
// key events are queued for the debounced flush. Everything is gated on
// the source window holding focus.
func (s *Session) Handle(ev platform.Event) {
	source, ok := s.sourceActive()
	if !ok {
		return
	}
	switch {
	case ev.Kind.IsMouse():
		s.dispatchMouse(ev, source)
	case ev.Kind.IsKey():
		if ev.VK == 0 {
			return // no virtual-key mapping: dropped, not an error
		}
		s.enqueueKey(ev)
	}
}

// sourceActive reports whether the OS foreground window's title matches
// the source rule, returning the window when it does.
func (s *Session) sourceActive() (model.Window, bool) {
	fg, ok := s.dir.Foreground()
	if !ok {
		return model.Window{}, false
	}
	if !s.set.Source.Match(fg.Title) {
		return model.Window{}, false
	}
	return fg, true
}

// dispatchMouse maps the screen point into each current target's client
// area and posts the message. Per-target failures are logged and never
// stop the remaining targets.
func (s *Session) dispatchMouse(ev platform.Event, source model.Window) {
	sourceRect, err := s.dir.WindowRect(source.Handle)
	if err != nil {
		s.logger.Warn("source window rect unavailable", logging.KeyError, err)
		return
	}
	sourceClient, err := s.dir.ClientSize(source.Handle)
	if err != nil {
		s.logger.Warn("source client size unavailable", logging.KeyError, err)
		return
	}

	targets, err := s.set.ResolveTargets(s.dir)
	if err != nil {
		s.logger.Warn("target refresh failed", logging.KeyError, err)
		return
	}
	if len(targets) == 0 {
		s.logger.Debug("no target windows matched; nothing to dispatch")
		return
	}

	for _, t := range targets {
		targetClient, err := s.dir.ClientSize(t.Handle)
		if err != nil {
			s.logger.Warn("skipping target", logging.KeyHandle, uintptr(t.Handle), logging.KeyError, err)
			continue
		}
		pt, err := geom.MapPoint(ev.Point, sourceRect, sourceClient, targetClient)
		if err != nil {
			// Zero-sized source window: mapping undefined, drop the event.
			s.logger.Debug("dropping event", logging.KeyError, err)
			return
		}
		if err := s.in.PostMouse(t.Handle, ev.Kind, pt); err != nil {
			s.logger.Warn("mouse dispatch failed",
				logging.KeyHandle, uintptr(t.Handle),
				logging.KeyTitle, t.Title,
				logging.KeyError, err)
		}
	}
}

// enqueueKey records a gated key event and stamps the activity time.
func (s *Session) enqueueKey(ev platform.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, keyEvent{kind: ev.Kind, vk: ev.VK})
	s.lastActivity = time.Now()
}

// PendingCount reports the queued key events awaiting flush.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// flushLoop polls at the configured interval and flushes the batch once
// the debounce window has elapsed with no new activity.
func (s *Session) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if batch := s.takeBatch(); len(batch) > 0 {
				s.flush(batch)
			}
		}
	}
}

// takeBatch atomically drains the pending batch when the quiet period has
// elapsed, otherwise returns nil.
func (s *Session) takeBatch() []keyEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	if time.Since(s.lastActivity) < s.opts.Debounce {
		return nil
	}
	batch := s.pending
	s.pending = nil
	return batch
}

// flush replays the batch to every current target, switching each to the
// foreground first, then restores the source window. If focus has left
// the source the batch is discarded: replaying into whatever took focus
// would type into the wrong window.
func (s *Session) flush(batch []keyEvent) {
	source, ok := s.sourceActive()
	if !ok {
		s.logger.Info("focus left source during flush; discarding batch", "events", len(batch))
		return
	}

	targets, err := s.set.ResolveTargets(s.dir)
	if err != nil {
		s.logger.Warn("target refresh failed", logging.KeyError, err)
		return
	}
	if len(targets) == 0 {
		s.logger.Info("no target windows matched; batch has nowhere to go", "events", len(batch))
		return
	}

	for _, t := range targets {
		if err := s.in.ForceForeground(t.Handle); err != nil {
			s.logger.Warn("could not focus target",
				logging.KeyHandle, uintptr(t.Handle),
				logging.KeyTitle, t.Title,
				logging.KeyError, err)
			continue
		}
		s.sleep(s.opts.Settle)

		for _, ev := range batch {
			if err := s.sendKey(source.Handle, t.Handle, ev); err != nil {
				s.logger.Warn("key dispatch failed",
					logging.KeyHandle, uintptr(t.Handle),
					"key", vk.Name(ev.vk),
					logging.KeyError, err)
			}
		}
	}

	if err := s.in.ForceForeground(source.Handle); err != nil {
		s.logger.Warn("could not restore source focus", logging.KeyError, err)
	}
}

func (s *Session) sendKey(source, target model.Handle, ev keyEvent) error {
	if s.opts.KeyStrategy == config.KeyStrategyPost {
		return s.in.PostKey(target, ev.kind, ev.vk)
	}
	return s.in.InjectKey(source, target, ev.kind, ev.vk)
}
