// Package sched provides the sleep/wake timer queue backing
// object.Sleep (§5 "Suspension points"): a thread releases the
// execution lock for a duration and is woken by a single dispatcher
// goroutine rather than by its own blocked time.Sleep call, so that
// many concurrently sleeping threads share one underlying timer queue.
package sched

import "time"

// entry is one pending wake, ordered by at. done is closed by the
// dispatcher when the wake fires.
type entry struct {
	at   time.Time
	done chan struct{}
}

// Timers is a min-heap of pending wakes ordered by wake time, adapted
// from the teacher's generic heap.Heap[T] (heap/heap.go) with the
// comparison fixed to entry.at instead of threaded in by the caller.
type Timers struct {
	data []*entry
}

func newTimers() *Timers {
	return &Timers{}
}

func (t *Timers) Len() int { return len(t.data) }

func (t *Timers) push(e *entry) {
	t.data = append(t.data, e)
	t.bubbleUp(len(t.data) - 1)
}

func (t *Timers) peek() (*entry, bool) {
	if len(t.data) == 0 {
		return nil, false
	}
	return t.data[0], true
}

func (t *Timers) pop() (*entry, bool) {
	if len(t.data) == 0 {
		return nil, false
	}
	top := t.data[0]
	last := len(t.data) - 1
	t.data[0] = t.data[last]
	t.data = t.data[:last]
	if len(t.data) > 0 {
		t.bubbleDown(0)
	}
	return top, true
}

func (t *Timers) bubbleUp(index int) {
	for index > 0 {
		parent := (index - 1) / 2
		if t.data[index].at.Before(t.data[parent].at) {
			t.data[index], t.data[parent] = t.data[parent], t.data[index]
			index = parent
		} else {
			break
		}
	}
}

func (t *Timers) bubbleDown(index int) {
	size := len(t.data)
	for {
		left := 2*index + 1
		right := 2*index + 2
		smallest := index

		if left < size && t.data[left].at.Before(t.data[smallest].at) {
			smallest = left
		}
		if right < size && t.data[right].at.Before(t.data[smallest].at) {
			smallest = right
		}
		if smallest == index {
			break
		}

		t.data[index], t.data[smallest] = t.data[smallest], t.data[index]
		index = smallest
	}
}
