// Package engine drives the progressive-interval reminder loop: fire
// immediately, wait first/second/subsequent intervals between firings, stop
// before any wait that would exceed the session total.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/hochfrequenz/nudge/internal/domain"
	"github.com/hochfrequenz/nudge/internal/notify"
)

// Recorder receives a history record per firing. Implementations must not
// fail outward; history is best-effort.
type Recorder interface {
	Add(record domain.Record)
	Last() (domain.Record, bool)
}

// Options contains runtime options for the Engine.
type Options struct {
	// TickInterval is the countdown granularity, one second by default.
	// Tests shorten it.
	TickInterval time.Duration
}

// Engine owns the timing state machine of a reminder session. It is the
// single writer of its state; callers read snapshots via Status.
type Engine struct {
	mu      sync.Mutex
	options Options
	history Recorder
	sink    notify.Sink

	cfg       domain.SessionConfig
	running   bool
	count     int
	elapsed   int
	nextIn    int
	pending   int
	expected  *int
	statusMsg string
	stopCh    chan struct{}
	events    []chan Event
}

// New creates an Engine firing into the given sink and recorder.
func New(history Recorder, sink notify.Sink, options Options) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	return &Engine{
		options:   options,
		history:   history,
		sink:      sink,
		statusMsg: "idle",
	}
}

// Subscribe registers a buffered observer channel. Sends never block; slow
// subscribers miss events.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	e.events = append(e.events, ch)
	e.mu.Unlock()
	return ch
}

// Start validates the config and launches the countdown loop. The first
// reminder fires immediately (ordinal 1). Returns a ValidationError for a
// bad config and domain.ErrAlreadyRunning while a session is active; state
// is unchanged in both cases.
func (e *Engine) Start(cfg domain.SessionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	e.cfg = cfg
	e.running = true
	e.count = 0
	e.elapsed = 0
	e.nextIn = 0
	e.pending = 0
	e.expected = nil
	e.statusMsg = "running"
	e.stopCh = make(chan struct{})
	stop := e.stopCh
	e.mu.Unlock()

	go e.run(stop)
	return nil
}

// Stop ends the session. It is idempotent and takes effect before the next
// tick can fire.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.statusMsg = "stopped"
	close(e.stopCh)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(Event{Type: EventStopped, Snapshot: snap, At: time.Now()})
}

// Status returns a snapshot of the engine state. It never blocks the loop.
func (e *Engine) Status() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	progress := 0
	if e.pending > 0 {
		progress = (e.pending - e.nextIn) * 100 / e.pending
	}
	return Snapshot{
		Running:        e.running,
		Status:         e.statusMsg,
		Count:          e.count,
		ElapsedSec:     e.elapsed,
		TotalSec:       e.cfg.TotalSec,
		NextInSec:      e.nextIn,
		PendingWaitSec: e.pending,
		Progress:       progress,
	}
}

func (e *Engine) run(stop <-chan struct{}) {
	e.fire()
	if !e.scheduleNext() {
		return
	}

	ticker := time.NewTicker(e.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !e.tick() {
				return
			}
		}
	}
}

// tick advances the countdown by one interval. It returns false when the
// loop should exit.
func (e *Engine) tick() bool {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return false
	}

	if e.nextIn > 1 {
		e.nextIn--
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.emit(Event{Type: EventProgress, Snapshot: snap, At: time.Now()})
		return true
	}

	e.nextIn = 0
	e.elapsed += e.pending
	e.mu.Unlock()

	e.fire()
	return e.scheduleNext()
}

// fire triggers the side effects for the next ordinal and records history.
// Failures downgrade to a status message and a failed record.
func (e *Engine) fire() {
	e.mu.Lock()
	e.count++
	count := e.count
	url := e.cfg.URL
	soundEnabled := e.cfg.SoundEnabled
	soundFile := e.cfg.SoundFile
	e.mu.Unlock()

	err := e.sink.OpenURL(url)
	if soundEnabled {
		go e.sink.PlaySound(soundFile)
	}

	e.mu.Lock()
	if err != nil {
		e.statusMsg = fmt.Sprintf("open failed: %v", err)
	} else {
		e.statusMsg = fmt.Sprintf("reminder %d fired", count)
	}
	expected := e.expected
	expectation := e.cfg.Expectation
	snap := e.snapshotLocked()
	e.mu.Unlock()

	record := e.buildRecord(count, url, err == nil, expected, expectation)
	e.history.Add(record)

	e.emit(Event{Type: EventFired, Snapshot: snap, Record: &record, At: time.Now()})
}

func (e *Engine) buildRecord(count int, url string, success bool, expected *int, expectation string) domain.Record {
	now := time.Now()

	var actual *int
	if prev, ok := e.history.Last(); ok {
		if prevTime := prev.Time(); !prevTime.IsZero() {
			delta := int(now.Sub(prevTime).Seconds())
			actual = &delta
		}
	}

	status := domain.RecordSuccess
	if !success {
		status = domain.RecordFailed
	}

	return domain.Record{
		Timestamp:   now.Format(domain.TimestampLayout),
		Count:       count,
		URL:         url,
		Status:      status,
		ExpectedSec: expected,
		ActualSec:   actual,
		Expectation: expectation,
	}
}

// scheduleNext arms the countdown for the upcoming firing, or completes the
// session if that wait would reach the total. Returns false when the loop
// should exit.
func (e *Engine) scheduleNext() bool {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return false
	}

	var wait int
	switch e.count {
	case 1:
		wait = e.cfg.FirstSec
	case 2:
		wait = e.cfg.SecondSec
	default:
		wait = e.cfg.SubseqSec
	}

	// Prospective completion check: never arm a wait that would exceed the
	// session total, and never fire that reminder.
	if e.elapsed+wait >= e.cfg.TotalSec {
		e.nextIn = 0
		e.pending = 0
		e.running = false
		e.statusMsg = "completed"
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.emit(Event{Type: EventCompleted, Snapshot: snap, At: time.Now()})
		return false
	}

	e.pending = wait
	e.nextIn = wait
	w := wait
	e.expected = &w
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(Event{Type: EventProgress, Snapshot: snap, At: time.Now()})
	return true
}

func (e *Engine) emit(event Event) {
	e.mu.Lock()
	subscribers := append([]chan Event(nil), e.events...)
	e.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
