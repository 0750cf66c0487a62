// Package fiber implements the cooperative-coroutine runtime spec.md
// §4.10 (and original_source/hilti/src/rt/fiber.cc) describes for
// incremental parsing: a Fiber suspends mid-parse when it runs out of
// input and resumes later when more arrives, rather than re-parsing from
// scratch. Go has no ucontext/setjmp primitive, so each Fiber is backed by
// a goroutine synchronized through a pair of unbuffered channels — the
// same translation ailang's runner.go uses for subprocess lifecycle
// management, adapted here to an in-process coroutine instead of an
// external process.
package fiber

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// State is a Fiber's lifecycle state, mirroring original_source's
// hilti::rt::fiber::Fiber::State.
type State int

const (
	StateInit State = iota
	StateRunning
	StateYielded
	StateIdle
	StateAborting
	StateFinished
)

func (s State) String() string {
	names := [...]string{"Init", "Running", "Yielded", "Idle", "Aborting", "Finished"}
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// WouldBlock is yielded by a Fiber's Run function to request more input,
// per spec.md §7's WouldBlock error class.
type WouldBlock struct {
	Needed int // bytes of additional input requested, 0 if unknown
}

func (w *WouldBlock) Error() string { return fmt.Sprintf("would block: needs %d more bytes", w.Needed) }

// AbortUnwind is the sentinel panic value used to unwind a Fiber's
// goroutine stack when it is abandoned before completion (e.g. the
// surrounding parse failed and this Fiber's partial progress must be
// discarded) — modeled on original_source's AbortException, which
// deliberately is not a normal C++ exception subclass so ordinary catch
// blocks never intercept it.
type AbortUnwind struct{}

func (AbortUnwind) String() string { return "fiber abort unwind" }

// RunFunc is the body a Fiber executes. yield is called whenever the body
// needs more input; it blocks until Resume is called and returns the
// newly available input length (or panics with AbortUnwind if the fiber
// was aborted instead of resumed).
type RunFunc func(yield func(WouldBlock) int) (result any, err error)

// Fiber is one suspendable unit of incremental-parse execution.
type Fiber struct {
	state State

	toFiber   chan int // resume signal carrying new input length; closed to abort
	fromFiber chan yieldMsg
	done      chan struct{}

	result any
	err    error

	stats *Stats
}

type yieldMsg struct {
	wb       *WouldBlock
	finished bool
	result   any
	err      error
}

// Stats tracks fiber reuse-cache behavior via Prometheus gauges/counters,
// per spec.md §4.10's statistics note, grounded on the teacher corpus's
// ingestion metrics pattern. Current/Max are derived from an internal
// counter rather than read back from the Gauge (prometheus.Gauge exposes
// no Get), so the high-water mark in Max can be kept correctly in sync
// with every fiber creation and completion.
type Stats struct {
	Current prometheus.Gauge
	Max     prometheus.Gauge
	Total   prometheus.Counter
	Cached  prometheus.Gauge

	mu      sync.Mutex
	current int64
	max     int64
}

// NewStats registers the fiber runtime's gauges/counters with reg.
func NewStats(reg prometheus.Registerer) *Stats {
	s := &Stats{
		Current: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hiltigo", Subsystem: "fiber", Name: "current", Help: "fibers currently live"}),
		Max:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hiltigo", Subsystem: "fiber", Name: "max", Help: "high-water mark of live fibers"}),
		Total:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hiltigo", Subsystem: "fiber", Name: "total", Help: "fibers ever created"}),
		Cached:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hiltigo", Subsystem: "fiber", Name: "cached", Help: "finished fibers held in the cache"}),
	}
	if reg != nil {
		reg.MustRegister(s.Current, s.Max, s.Total, s.Cached)
	}
	return s
}

// started records a trampoline initialization: it bumps Total/Current and,
// if this pushed Current past the prior high-water mark, Max too.
func (s *Stats) started() {
	if s == nil {
		return
	}
	s.Total.Inc()
	s.mu.Lock()
	s.current++
	if s.current > s.max {
		s.max = s.current
	}
	current, max := s.current, s.max
	s.mu.Unlock()
	s.Current.Set(float64(current))
	s.Max.Set(float64(max))
}

// finished records a fiber leaving the live set, whether it completed
// normally, errored, or was aborted.
func (s *Stats) finished() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.current--
	current := s.current
	s.mu.Unlock()
	s.Current.Set(float64(current))
}

// New creates a Fiber in StateInit. It does not start running until Run is
// called.
func New(body RunFunc, stats *Stats) *Fiber {
	stats.started()
	f := &Fiber{
		state:     StateInit,
		toFiber:   make(chan int),
		fromFiber: make(chan yieldMsg),
		done:      make(chan struct{}),
		stats:     stats,
	}
	go f.trampoline(body)
	return f
}

// trampoline is the goroutine body every Fiber runs: it calls the user's
// RunFunc, translating each WouldBlock yield into a channel round-trip,
// and reports the final result or panic-recovered abort back through
// fromFiber.
func (f *Fiber) trampoline(body RunFunc) {
	// stats.finished must run before the channel operation that unblocks
	// whichever caller is waiting (the fromFiber send, or close(f.done) on
	// the abort-unwind path): Run/Resume return as soon as they observe
	// that operation, so decrementing afterward would leave a window where
	// a caller sees a fiber counted as live after Run/Resume already
	// reported it finished.
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(AbortUnwind); ok {
				f.stats.finished()
				close(f.done)
				return
			}
			f.stats.finished()
			f.fromFiber <- yieldMsg{finished: true, err: fmt.Errorf("fiber panic: %v", r)}
			close(f.done)
			return
		}
	}()
	yield := func(wb WouldBlock) int {
		f.fromFiber <- yieldMsg{wb: &wb}
		n, ok := <-f.toFiber
		if !ok {
			panic(AbortUnwind{})
		}
		return n
	}
	result, err := body(yield)
	f.stats.finished()
	f.fromFiber <- yieldMsg{finished: true, result: result, err: err}
	close(f.done)
}

// Run starts (or resumes) the fiber and blocks until it either yields a
// WouldBlock or finishes. On the very first call state transitions
// Init->Running; subsequent calls transition Yielded->Running.
func (f *Fiber) Run(ctx context.Context) (yielded *WouldBlock, finished bool, result any, err error) {
	if f.state == StateFinished {
		return nil, true, f.result, f.err
	}
	if f.state == StateYielded {
		return f.Resume(ctx, 0)
	}
	f.state = StateRunning
	select {
	case msg := <-f.fromFiber:
		return f.handle(msg)
	case <-ctx.Done():
		f.state = StateAborting
		return nil, false, nil, ctx.Err()
	}
}

// Resume delivers newly available input (its length) to a yielded fiber
// and blocks until it yields again or finishes.
func (f *Fiber) Resume(ctx context.Context, newInputLen int) (yielded *WouldBlock, finished bool, result any, err error) {
	if f.state != StateYielded && f.state != StateIdle {
		return nil, false, nil, fmt.Errorf("fiber: Resume called in state %s", f.state)
	}
	f.state = StateRunning
	select {
	case f.toFiber <- newInputLen:
	case <-ctx.Done():
		f.state = StateAborting
		return nil, false, nil, ctx.Err()
	}
	select {
	case msg := <-f.fromFiber:
		return f.handle(msg)
	case <-ctx.Done():
		f.state = StateAborting
		return nil, false, nil, ctx.Err()
	}
}

func (f *Fiber) handle(msg yieldMsg) (*WouldBlock, bool, any, error) {
	if msg.finished {
		f.state = StateFinished
		f.result, f.err = msg.result, msg.err
		return nil, true, msg.result, msg.err
	}
	f.state = StateYielded
	return msg.wb, false, nil, nil
}

// Abort unwinds the fiber's goroutine without letting it finish normally,
// per spec.md's note that discarded incremental-parse attempts must not
// leak the goroutine. It is safe to call on an already-finished fiber.
func (f *Fiber) Abort() {
	if f.state == StateFinished {
		return
	}
	f.state = StateAborting
	close(f.toFiber)
	<-f.done
	f.state = StateFinished
}

// State returns the fiber's current lifecycle state.
func (f *Fiber) State() State { return f.state }

// Cache holds up to max finished fibers, with the count tracked via
// Stats.Cached. Put accepts only fibers in StateFinished, whose goroutines
// have already exited; the cache keeps them (and their result values)
// alive until Drain. It has no checkout operation: a cached fiber is never
// re-armed or run again.
type Cache struct {
	idle  []*Fiber
	stats *Stats
	max   int
}

// NewCache creates a cache capped at max finished fibers.
func NewCache(max int, stats *Stats) *Cache {
	return &Cache{stats: stats, max: max}
}

// Put returns a finished fiber to the cache, up to the configured cap;
// beyond the cap it is dropped (and its goroutine has already exited).
func (c *Cache) Put(f *Fiber) {
	if f.State() != StateFinished || len(c.idle) >= c.max {
		return
	}
	c.idle = append(c.idle, f)
	if c.stats != nil {
		c.stats.Cached.Set(float64(len(c.idle)))
	}
}

// Drain removes and returns every cached fiber, for shutdown/testing.
func (c *Cache) Drain() []*Fiber {
	out := c.idle
	c.idle = nil
	if c.stats != nil {
		c.stats.Cached.Set(0)
	}
	return out
}

// Resumable is the incremental-parser wrapper spec.md §2/§3 names
// ("ResumableParser"): a Fiber plus the bookkeeping a caller needs to feed
// input across multiple WouldBlock yields without re-inspecting raw Fiber
// state (spec.md §8 scenario 4, "feed partial input, expect WouldBlock",
// and scenario 5, "feed the rest, expect completion").
type Resumable struct {
	fiber *Fiber

	done   bool
	result any
	err    error
}

// NewResumable wraps body as a Resumable incremental parser, backed by a
// fresh Fiber drawn from stats' bookkeeping (stats may be nil).
func NewResumable(body RunFunc, stats *Stats) *Resumable {
	return &Resumable{fiber: New(body, stats)}
}

// Feed drives the fiber forward with ctx and newInputLen additional bytes
// of input (newInputLen is ignored on the very first call, which uses Run
// instead of Resume). It returns the WouldBlock the fiber yields if it
// still needs more input, or nil once the fiber has finished — at which
// point Done reports true and Get becomes valid to call.
func (r *Resumable) Feed(ctx context.Context, newInputLen int) (*WouldBlock, error) {
	if r.done {
		return nil, r.err
	}

	var (
		yielded  *WouldBlock
		finished bool
		err      error
	)
	if r.fiber.State() == StateInit {
		yielded, finished, r.result, err = r.fiber.Run(ctx)
	} else {
		yielded, finished, r.result, err = r.fiber.Resume(ctx, newInputLen)
	}

	if finished || err != nil {
		r.done = true
		r.err = err
		return nil, err
	}
	return yielded, nil
}

// Done reports whether the fiber has finished, successfully or not.
func (r *Resumable) Done() bool { return r.done }

// Get returns the fiber's final result. It must only be called once Done
// reports true; it re-raises whatever error the RunFunc returned (or that
// Feed captured from an aborted/canceled fiber) rather than making the
// caller separately track and recheck that error.
func (r *Resumable) Get() (any, error) {
	if !r.done {
		return nil, fmt.Errorf("fiber: Get called before the resumable parser finished")
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

// Abort discards the underlying fiber without letting it run to
// completion, marking the Resumable done with no result.
func (r *Resumable) Abort() {
	r.fiber.Abort()
	r.done = true
}
