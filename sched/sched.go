// Package sched defines the one-shot event scheduling contract the
// drive emulation runs on, and provides a deterministic virtual-time
// implementation of it.
package sched

import "container/heap"

// Event is a single-shot deferred callback. DeltaNS is the requested
// delay relative to the moment Schedule is called; the callback
// receives the event and how late it fired relative to that request.
type Event struct {
	DeltaNS  int64
	Callback func(e *Event, lateNS int64)

	deadline int64
	seq      int
	index    int
}

// Scheduler enqueues one-shot timer events. Exactly-once firing, no
// periodic events, no cancellation.
type Scheduler interface {
	Schedule(e *Event)
}

// Clock is a monotonic nanosecond time source.
type Clock interface {
	Now() int64
}

// Simulator is a virtual-time scheduler and clock. Events fire in
// deadline order, ties in scheduling order, on the caller's goroutine.
type Simulator struct {
	now   int64
	seq   int
	queue eventQueue
}

// NewSimulator creates a simulator with virtual time at zero.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Now returns the current virtual time in nanoseconds.
func (s *Simulator) Now() int64 {
	return s.now
}

// Pending returns the number of scheduled events not yet fired.
func (s *Simulator) Pending() int {
	return s.queue.Len()
}

// Schedule enqueues an event DeltaNS from the current virtual time.
// A negative delay fires at the current time.
func (s *Simulator) Schedule(e *Event) {
	e.deadline = s.now + e.DeltaNS
	if e.DeltaNS < 0 {
		e.deadline = s.now
	}
	e.seq = s.seq
	s.seq++
	heap.Push(&s.queue, e)
}

// Step fires the earliest pending event, advancing virtual time to its
// deadline. Returns false if nothing is pending.
func (s *Simulator) Step() bool {
	if s.queue.Len() == 0 {
		return false
	}
	e := heap.Pop(&s.queue).(*Event)
	if e.deadline > s.now {
		s.now = e.deadline
	}
	e.Callback(e, s.now-e.deadline)
	return true
}

// Run fires events until none are pending. Callbacks may schedule
// further events.
func (s *Simulator) Run() {
	for s.Step() {
	}
}

// Advance moves virtual time forward by deltaNS, firing every event
// that falls due on the way.
func (s *Simulator) Advance(deltaNS int64) {
	target := s.now + deltaNS
	for s.queue.Len() > 0 && s.queue[0].deadline <= target {
		s.Step()
	}
	s.now = target
}

// eventQueue is a min-heap ordered by deadline, then scheduling order.
type eventQueue []*Event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].deadline != q[j].deadline {
		return q[i].deadline < q[j].deadline
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *eventQueue) Push(x any) {
	e := x.(*Event)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}
