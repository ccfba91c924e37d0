package sim

import (
	"container/heap"

	"github.com/jwebster45206/hexsim/pkg/event"
)

type queued struct {
	event event.Event
	seq   uint64
}

// eventQueue is a min-heap ordered by effective tick, then by insertion
// order, so events due on the same tick dispatch first-in first-out.
type eventQueue []queued

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].event.Tick != q[j].event.Tick {
		return q[i].event.Tick < q[j].event.Tick
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(queued)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// schedule holds pending events with a monotonically increasing sequence.
type schedule struct {
	q   eventQueue
	seq uint64
}

func (s *schedule) push(e event.Event) {
	s.seq++
	heap.Push(&s.q, queued{event: e, seq: s.seq})
}

// popDue removes and returns the next event effective at or before tick.
func (s *schedule) popDue(tick int) (event.Event, bool) {
	if len(s.q) == 0 || s.q[0].event.Tick > tick {
		return event.Event{}, false
	}
	return heap.Pop(&s.q).(queued).event, true
}

func (s *schedule) len() int { return len(s.q) }

// snapshot returns pending events in dispatch order.
func (s *schedule) snapshot() []event.Event {
	cp := make(eventQueue, len(s.q))
	copy(cp, s.q)
	out := make([]event.Event, 0, len(cp))
	for cp.Len() > 0 {
		out = append(out, heap.Pop(&cp).(queued).event)
	}
	return out
}
