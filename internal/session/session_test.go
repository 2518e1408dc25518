package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/winmirror/winmirror/internal/config"
	"github.com/winmirror/winmirror/internal/geom"
	"github.com/winmirror/winmirror/internal/match"
	"github.com/winmirror/winmirror/internal/model"
	"github.com/winmirror/winmirror/internal/platform"
)

// fakeDirectory simulates the OS window list.
type fakeDirectory struct {
	mu         sync.Mutex
	windows    []model.Window
	foreground model.Window
	hasFg      bool
	rects      map[model.Handle]geom.Rect
	clients    map[model.Handle]geom.Size
}

func (d *fakeDirectory) ListWindows() ([]model.Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.Window(nil), d.windows...), nil
}

func (d *fakeDirectory) Foreground() (model.Window, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.foreground, d.hasFg
}

func (d *fakeDirectory) setForeground(w model.Window) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.foreground = w
	d.hasFg = true
}

func (d *fakeDirectory) WindowRect(h model.Handle) (geom.Rect, error) {
	if r, ok := d.rects[h]; ok {
		return r, nil
	}
	return geom.Rect{}, platform.ErrWindowGone
}

func (d *fakeDirectory) ClientSize(h model.Handle) (geom.Size, error) {
	if s, ok := d.clients[h]; ok {
		return s, nil
	}
	return geom.Size{}, platform.ErrWindowGone
}

type dispatchCall struct {
	target model.Handle
	kind   platform.EventKind
	pt     geom.Point
	vk     uint16
}

// fakeInputter records dispatch calls and can fail for chosen handles.
type fakeInputter struct {
	mu         sync.Mutex
	mouse      []dispatchCall
	keys       []dispatchCall
	posted     []dispatchCall
	foreground []model.Handle
	failFor    map[model.Handle]bool
}

func (in *fakeInputter) PostMouse(h model.Handle, kind platform.EventKind, pt geom.Point) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.failFor[h] {
		return platform.ErrPostFailed
	}
	in.mouse = append(in.mouse, dispatchCall{target: h, kind: kind, pt: pt})
	return nil
}

func (in *fakeInputter) PostKey(h model.Handle, kind platform.EventKind, vk uint16) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.failFor[h] {
		return platform.ErrPostFailed
	}
	in.posted = append(in.posted, dispatchCall{target: h, kind: kind, vk: vk})
	return nil
}

func (in *fakeInputter) InjectKey(source, target model.Handle, kind platform.EventKind, vk uint16) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.failFor[target] {
		return platform.ErrPostFailed
	}
	in.keys = append(in.keys, dispatchCall{target: target, kind: kind, vk: vk})
	return nil
}

func (in *fakeInputter) ForceForeground(h model.Handle) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.failFor[h] {
		return platform.ErrWindowGone
	}
	in.foreground = append(in.foreground, h)
	return nil
}

func (in *fakeInputter) VKFromRune(r rune) (uint16, bool) {
	if r >= 'a' && r <= 'z' {
		return uint16(r - 'a' + 'A'), true
	}
	return 0, false
}

func (in *fakeInputter) keyCalls() []dispatchCall {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]dispatchCall(nil), in.keys...)
}

func (in *fakeInputter) mouseCalls() []dispatchCall {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]dispatchCall(nil), in.mouse...)
}

const (
	sourceHandle  = model.Handle(0x10)
	targetHandleA = model.Handle(0x20)
	targetHandleB = model.Handle(0x21)
)

func newFixture() (*fakeDirectory, *fakeInputter, *Session) {
	src := model.Window{Handle: sourceHandle, Title: "RG1 main"}
	dir := &fakeDirectory{
		windows: []model.Window{
			src,
			{Handle: targetHandleA, Title: "RG2 - build"},
			{Handle: targetHandleB, Title: "rg3-dev"},
		},
		rects: map[model.Handle]geom.Rect{
			sourceHandle: {Left: 0, Top: 0, Right: 800, Bottom: 600},
		},
		clients: map[model.Handle]geom.Size{
			sourceHandle:  {Width: 800, Height: 600},
			targetHandleA: {Width: 400, Height: 300},
			targetHandleB: {Width: 800, Height: 600},
		},
	}
	dir.setForeground(src)

	in := &fakeInputter{failFor: map[model.Handle]bool{}}
	set := match.CompileSet("rg1", []string{"rg2", "rg3"})
	sess := New(set, dir, in, Options{
		Debounce:    20 * time.Millisecond,
		Settle:      0,
		Poll:        2 * time.Millisecond,
		KeyStrategy: config.KeyStrategyInject,
	})
	sess.sleep = func(time.Duration) {}
	return dir, in, sess
}

func TestHandle_MouseDispatchesToAllTargetsScaled(t *testing.T) {
	_, in, sess := newFixture()

	sess.Handle(platform.Event{Kind: platform.MouseMove, Point: geom.Point{X: 400, Y: 300}})

	calls := in.mouseCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(calls))
	}
	if calls[0].target != targetHandleA || calls[0].pt != (geom.Point{X: 200, Y: 150}) {
		t.Errorf("target A: got %+v, want (200,150)", calls[0])
	}
	if calls[1].target != targetHandleB || calls[1].pt != (geom.Point{X: 400, Y: 300}) {
		t.Errorf("target B: got %+v, want (400,300)", calls[1])
	}
}

func TestHandle_GatedOnSourceFocus(t *testing.T) {
	dir, in, sess := newFixture()
	dir.setForeground(model.Window{Handle: 0x99, Title: "unrelated"})

	sess.Handle(platform.Event{Kind: platform.MouseMove, Point: geom.Point{X: 10, Y: 10}})
	sess.Handle(platform.Event{Kind: platform.KeyDown, VK: 'A'})

	if len(in.mouseCalls()) != 0 {
		t.Error("mouse event should not dispatch while source is unfocused")
	}
	if sess.PendingCount() != 0 {
		t.Error("key event should not queue while source is unfocused")
	}
}

func TestHandle_ZeroSizedSourceDropsEvent(t *testing.T) {
	dir, in, sess := newFixture()
	dir.clients[sourceHandle] = geom.Size{Width: 0, Height: 600}

	sess.Handle(platform.Event{Kind: platform.LeftDown, Point: geom.Point{X: 10, Y: 10}})

	if len(in.mouseCalls()) != 0 {
		t.Error("degenerate source geometry should drop the event")
	}
}

func TestHandle_StaleTargetLoggedOthersStillServed(t *testing.T) {
	_, in, sess := newFixture()
	in.failFor[targetHandleA] = true

	sess.Handle(platform.Event{Kind: platform.LeftDown, Point: geom.Point{X: 100, Y: 100}})

	calls := in.mouseCalls()
	if len(calls) != 1 || calls[0].target != targetHandleB {
		t.Fatalf("surviving target should still receive the event, got %+v", calls)
	}
}

func TestHandle_UnmappedKeyDropped(t *testing.T) {
	_, _, sess := newFixture()

	sess.Handle(platform.Event{Kind: platform.KeyDown, VK: 0})

	if sess.PendingCount() != 0 {
		t.Error("key with no mapping should be silently dropped")
	}
}

func TestHandle_UnnamedNativeKeyStillQueued(t *testing.T) {
	_, _, sess := newFixture()

	// VK_DELETE has no entry in the named-key table; any nonzero native
	// code is mirrored as-is.
	sess.Handle(platform.Event{Kind: platform.KeyDown, VK: 0x2E})

	if sess.PendingCount() != 1 {
		t.Error("nonzero virtual-key codes outside the named table must queue")
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestFlush_BurstProducesSingleOrderedFlush(t *testing.T) {
	_, in, sess := newFixture()

	for _, vk := range []uint16{'A', 'B', 'C'} {
		sess.Handle(platform.Event{Kind: platform.KeyDown, VK: vk})
		sess.Handle(platform.Event{Kind: platform.KeyUp, VK: vk})
	}
	if got := sess.PendingCount(); got != 6 {
		t.Fatalf("expected 6 queued events, got %d", got)
	}

	if batch := sess.takeBatch(); batch != nil {
		t.Fatal("batch must not flush before the debounce window elapses")
	}

	time.Sleep(30 * time.Millisecond)
	batch := sess.takeBatch()
	if len(batch) != 6 {
		t.Fatalf("expected one flush with all 6 events, got %d", len(batch))
	}
	sess.flush(batch)

	calls := in.keyCalls()
	// 6 events replayed to each of 2 targets, order preserved per target.
	if len(calls) != 12 {
		t.Fatalf("expected 12 injections, got %d", len(calls))
	}
	wantVKs := []uint16{'A', 'A', 'B', 'B', 'C', 'C'}
	for i, want := range wantVKs {
		if calls[i].vk != want {
			t.Errorf("target A event %d: got vk %c, want %c", i, calls[i].vk, want)
		}
		if calls[6+i].vk != want {
			t.Errorf("target B event %d: got vk %c, want %c", i, calls[6+i].vk, want)
		}
	}
	if sess.PendingCount() != 0 {
		t.Error("batch should be cleared atomically on flush")
	}
}

func TestFlush_TwoSeparatedBurstsProduceTwoFlushes(t *testing.T) {
	_, _, sess := newFixture()

	sess.Handle(platform.Event{Kind: platform.KeyDown, VK: 'A'})
	time.Sleep(30 * time.Millisecond)
	first := sess.takeBatch()
	if len(first) != 1 {
		t.Fatalf("first flush: expected 1 event, got %d", len(first))
	}

	sess.Handle(platform.Event{Kind: platform.KeyDown, VK: 'B'})
	time.Sleep(30 * time.Millisecond)
	second := sess.takeBatch()
	if len(second) != 1 || second[0].vk != 'B' {
		t.Fatalf("second flush: expected one 'B' event, got %+v", second)
	}
}

func TestFlush_FocusAwayDiscardsBatch(t *testing.T) {
	dir, in, sess := newFixture()

	sess.Handle(platform.Event{Kind: platform.KeyDown, VK: 'A'})
	time.Sleep(30 * time.Millisecond)
	batch := sess.takeBatch()

	dir.setForeground(model.Window{Handle: 0x99, Title: "unrelated"})
	sess.flush(batch)

	if len(in.keyCalls()) != 0 {
		t.Error("batch should be discarded when focus left the source")
	}
	if sess.PendingCount() != 0 {
		t.Error("discarded batch must not be re-queued")
	}
}

func TestFlush_RestoresSourceForeground(t *testing.T) {
	_, in, sess := newFixture()

	sess.Handle(platform.Event{Kind: platform.KeyDown, VK: 'A'})
	time.Sleep(30 * time.Millisecond)
	sess.flush(sess.takeBatch())

	fg := in.foreground
	if len(fg) != 3 {
		t.Fatalf("expected 2 target switches + source restore, got %v", fg)
	}
	if fg[len(fg)-1] != sourceHandle {
		t.Errorf("last foreground switch should restore the source, got %#x", uintptr(fg[len(fg)-1]))
	}
}

func TestFlush_EmptyTargetSetIsNoError(t *testing.T) {
	dir, in, sess := newFixture()
	dir.mu.Lock()
	dir.windows = []model.Window{{Handle: sourceHandle, Title: "RG1 main"}}
	dir.mu.Unlock()

	sess.Handle(platform.Event{Kind: platform.KeyDown, VK: 'A'})
	time.Sleep(30 * time.Millisecond)
	sess.flush(sess.takeBatch())

	if len(in.keyCalls()) != 0 {
		t.Error("no targets: no dispatch calls expected")
	}
}

func TestFlush_PostStrategyUsesMessagePosting(t *testing.T) {
	_, in, sess := newFixture()
	sess.opts.KeyStrategy = config.KeyStrategyPost

	sess.Handle(platform.Event{Kind: platform.KeyDown, VK: 'A'})
	time.Sleep(30 * time.Millisecond)
	sess.flush(sess.takeBatch())

	if len(in.keyCalls()) != 0 {
		t.Error("post strategy must not use low-level injection")
	}
	if len(in.posted) != 2 {
		t.Errorf("expected 2 posted key messages, got %d", len(in.posted))
	}
}

func TestRun_FlushLoopEndToEnd(t *testing.T) {
	_, in, sess := newFixture()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan platform.Event, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		sess.Run(ctx, events)
	}()

	events <- platform.Event{Kind: platform.KeyDown, VK: 'A'}
	events <- platform.Event{Kind: platform.KeyUp, VK: 'A'}

	waitFor(t, time.Second, func() bool { return len(in.keyCalls()) == 4 })

	close(events)
	<-done
}

func TestRun_StopsWhenEventChannelCloses(t *testing.T) {
	_, _, sess := newFixture()

	events := make(chan platform.Event)
	done := make(chan error, 1)
	go func() { done <- sess.Run(context.Background(), events) }()

	close(events)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on channel close: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after the event channel closed")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	_, _, sess := newFixture()

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan platform.Event)
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx, events) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on cancel: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}
