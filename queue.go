package uvcpreview

import "sync"

// PreviewQueue is a bounded FIFO handoff from the ingest callback to the
// preview worker. On overflow the incoming frame is rejected (drop-newest);
// the caller is responsible for recycling it.
type PreviewQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []*RawFrame
	capacity int
	closed   bool
}

// NewPreviewQueue creates a queue with the given maximum depth.
func NewPreviewQueue(capacity int) *PreviewQueue {
	q := &PreviewQueue{capacity: capacity}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends f to the queue. It reports false, without taking ownership
// of f, if the queue is full or closed.
func (q *PreviewQueue) Push(f *RawFrame) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || len(q.items) >= q.capacity {
		return false
	}
	q.items = append(q.items, f)
	q.cond.Signal()
	return true
}

// PopBlocking waits for a frame to become available and returns it, or
// returns nil once the queue has been closed and drained.
func (q *PreviewQueue) PopBlocking() *RawFrame {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil
	}
	f := q.items[0]
	q.items = q.items[1:]
	return f
}

// Close marks the queue closed and wakes any blocked consumer; it does not
// recycle buffered frames, callers should follow with Drain(pool).
func (q *PreviewQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Reopen clears the closed flag so the queue can be reused across a
// stop/start cycle.
func (q *PreviewQueue) Reopen() {
	q.mu.Lock()
	q.closed = false
	q.mu.Unlock()
}

// Drain removes and releases every buffered frame back to pool.
func (q *PreviewQueue) Drain(pool *FramePool) {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	for _, f := range items {
		pool.Release(f)
	}
}

// Len reports the current depth (for tests/metrics).
func (q *PreviewQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// CaptureSlot holds at most one frame, produced by the preview worker and
// consumed by the capture worker. A write always wins: any frame already
// resident and unread is recycled in favor of the new one.
//
// CaptureSlot also carries the quiescence handshake state (capturing,
// quiesced) used by Session to safely swap the capture surface or frame
// callback while the capture worker is live, since the handshake needs the
// same mutex/condvar the worker already blocks on.
type CaptureSlot struct {
	mu        sync.Mutex
	cond      *sync.Cond
	frame     *RawFrame
	closed    bool
	capturing bool
	quiesced  bool
}

// NewCaptureSlot creates an empty slot with capturing enabled.
func NewCaptureSlot() *CaptureSlot {
	s := &CaptureSlot{capturing: true}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Put installs f as the slot's contents, recycling any previous occupant
// into pool. It reports false, without storing f, if the slot is closed.
func (s *CaptureSlot) Put(f *RawFrame, pool *FramePool) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	prev := s.frame
	s.frame = f
	s.mu.Unlock()
	s.cond.Broadcast()
	if prev != nil {
		pool.Release(prev)
	}
	return true
}

// TakeBlocking waits for the slot to be occupied and returns its contents,
// or nil once closed. It does not participate in the quiescence handshake;
// the capture worker uses Next instead so a pending BeginQuiesce is
// observed even while the worker would otherwise be parked waiting for a
// frame. TakeBlocking remains useful to tests and to embedders driving the
// slot directly without the handshake.
func (s *CaptureSlot) TakeBlocking() *RawFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.frame == nil && !s.closed {
		s.cond.Wait()
	}
	f := s.frame
	s.frame = nil
	return f
}

// Close marks the slot closed and wakes any blocked consumer.
func (s *CaptureSlot) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Reopen clears the closed flag so the slot can be reused across a
// stop/start cycle.
func (s *CaptureSlot) Reopen() {
	s.mu.Lock()
	s.closed = false
	s.mu.Unlock()
}

// Drain releases any resident frame back to pool.
func (s *CaptureSlot) Drain(pool *FramePool) {
	s.mu.Lock()
	f := s.frame
	s.frame = nil
	s.mu.Unlock()
	if f != nil {
		pool.Release(f)
	}
}

// Broadcast wakes every waiter without changing state; used by the
// quiescence handshake in Session to notify a reconfiguration waiter that
// the capture worker has observed a state change.
func (s *CaptureSlot) Broadcast() {
	s.cond.Broadcast()
}

// Lock/Unlock expose the slot's mutex for the quiescence handshake in
// session.go, which needs to wait on the same condition variable the
// capture worker signals.
func (s *CaptureSlot) Lock()   { s.mu.Lock() }
func (s *CaptureSlot) Unlock() { s.mu.Unlock() }
func (s *CaptureSlot) Wait()   { s.cond.Wait() }

// BeginQuiesce clears the capturing flag and wakes the worker so it observes
// the change on its next loop iteration. Must be called without holding the
// slot's lock.
func (s *CaptureSlot) BeginQuiesce() {
	s.mu.Lock()
	s.capturing = false
	s.quiesced = false
	s.mu.Unlock()
	s.cond.Broadcast()
}

// AwaitQuiesced blocks until the worker has parked in response to
// BeginQuiesce.
func (s *CaptureSlot) AwaitQuiesced() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.quiesced {
		s.cond.Wait()
	}
}

// Resume clears the quiesced flag, sets capturing, and wakes the parked
// worker so it resumes its loop.
func (s *CaptureSlot) Resume() {
	s.mu.Lock()
	s.capturing = true
	s.quiesced = false
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Next is the capture worker's single blocking wait point: it returns the
// next frame, parking and reporting quiescence via AwaitQuiesced's predicate
// whenever BeginQuiesce has been called, and waking back up to resume
// waiting for frames once Resume is called. It returns (nil, true) once the
// slot is closed.
func (s *CaptureSlot) Next() (frame *RawFrame, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.closed {
			return nil, true
		}
		if !s.capturing {
			s.quiesced = true
			s.cond.Broadcast()
			for !s.capturing && !s.closed {
				s.cond.Wait()
			}
			continue
		}
		if s.frame != nil {
			f := s.frame
			s.frame = nil
			return f, false
		}
		s.cond.Wait()
	}
}
