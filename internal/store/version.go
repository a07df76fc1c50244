package store

import (
	"sync"
	"sync/atomic"
)

// versionEvent is either a dirty mark or, when done is set, a sync barrier.
type versionEvent struct {
	done chan struct{}
}

// versioner owns the data version counter. Marks are applied by a single consumer
// goroutine, so a reader may see the pre-write version until the queue drains.
type versioner struct {
	events  chan versionEvent
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once

	pending atomic.Bool
	version atomic.Int64
	dirty   atomic.Bool
}

func newVersioner() *versioner {
	v := &versioner{
		events:  make(chan versionEvent, 64),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go v.run()
	return v
}

func (v *versioner) run() {
	defer close(v.stopped)
	for {
		select {
		case <-v.quit:
			return
		case ev := <-v.events:
			if ev.done != nil {
				close(ev.done)
				continue
			}
			v.pending.Store(false)
			v.version.Add(1)
			v.dirty.Store(true)
		}
	}
}

// mark queues one version bump. Marks issued while one is already queued collapse into it.
func (v *versioner) mark() {
	if !v.pending.CompareAndSwap(false, true) {
		return
	}
	select {
	case v.events <- versionEvent{}:
	case <-v.stopped:
	}
}

// sync blocks until every event queued before the call has been applied.
func (v *versioner) sync() {
	done := make(chan struct{})
	select {
	case v.events <- versionEvent{done: done}:
	case <-v.stopped:
		return
	}
	select {
	case <-done:
	case <-v.stopped:
	}
}

func (v *versioner) close() {
	v.once.Do(func() { close(v.quit) })
	<-v.stopped
}

// MarkDirty queues a version bump. It is idempotent while a bump is pending.
func (s *Store) MarkDirty() { s.ver.mark() }

// Version is the data version as of the last applied mark.
func (s *Store) Version() int64 { return s.ver.version.Load() }

// Dirty reports whether a write has been applied since the last MarkClean.
func (s *Store) Dirty() bool { return s.ver.dirty.Load() }

// Sync waits for queued version updates to be applied.
func (s *Store) Sync() { s.ver.sync() }

// MarkClean is called by the persistence layer after a successful save.
func (s *Store) MarkClean() {
	s.ver.sync()
	s.ver.dirty.Store(false)
}

// Generation is a synchronous counter bumped on every write. Views use it as a
// cache key; it is not persisted.
func (s *Store) Generation() uint64 { return s.gen }

// Batch runs fn as one logical write batch: all writes inside it produce a single
// version bump. Batches nest.
func (s *Store) Batch(fn func()) {
	s.batchDepth++
	defer func() {
		s.batchDepth--
		if s.batchDepth == 0 && s.batchTouched {
			s.batchTouched = false
			s.ver.mark()
		}
	}()
	fn()
}

// touch records a write: bumps the generation and marks dirty unless inside a batch.
func (s *Store) touch() {
	s.gen++
	if s.batchDepth > 0 {
		s.batchTouched = true
		return
	}
	s.ver.mark()
}
