package graphics

import "time"

// FrameHandle identifies one requested frame callback. Zero is never issued.
type FrameHandle uint64

// FrameFunc runs once per requested frame with the frame timestamp.
type FrameFunc func(now time.Time)

// Scheduler is the platform's per-frame callback queue
// (requestAnimationFrame in a browser).
type Scheduler interface {
	RequestFrame(fn FrameFunc) FrameHandle
	CancelFrame(h FrameHandle)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// StepClock is a manually advanced clock for offline rendering and tests.
type StepClock struct {
	now time.Time
}

func NewStepClock(start time.Time) *StepClock {
	return &StepClock{now: start}
}

func (c *StepClock) Now() time.Time { return c.now }

func (c *StepClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

type queuedFrame struct {
	handle FrameHandle
	fn     FrameFunc
}

// FrameQueue is a Scheduler for hosts that drive their own loop. Callbacks
// requested while Flush runs are deferred to the next Flush, matching
// requestAnimationFrame. It is not safe for concurrent use.
type FrameQueue struct {
	next    FrameHandle
	pending []queuedFrame
	batch   []queuedFrame
}

func (q *FrameQueue) RequestFrame(fn FrameFunc) FrameHandle {
	q.next++
	q.pending = append(q.pending, queuedFrame{handle: q.next, fn: fn})
	return q.next
}

func (q *FrameQueue) CancelFrame(h FrameHandle) {
	for i, f := range q.pending {
		if f.handle == h {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
	// cancelled by an earlier callback of the batch being flushed
	for i, f := range q.batch {
		if f.handle == h {
			q.batch[i].fn = nil
			return
		}
	}
}

// Flush runs every callback that was pending when it was called and
// returns how many ran.
func (q *FrameQueue) Flush(now time.Time) int {
	q.batch = q.pending
	q.pending = nil
	ran := 0
	for i := range q.batch {
		fn := q.batch[i].fn
		if fn == nil {
			continue
		}
		q.batch[i].fn = nil
		fn(now)
		ran++
	}
	q.batch = nil
	return ran
}

func (q *FrameQueue) Pending() int { return len(q.pending) }
