package simulator

import (
	"golang.org/x/exp/slices"
)

// ReadyQueue holds the handles of jobs that arrived or were preempted and wait for a server.
// Insertion order is kept, but it is not a priority: every policy imposes its own order.
type ReadyQueue struct {
	handles []JobHandle
}

func NewReadyQueue() *ReadyQueue {
	return &ReadyQueue{
		handles: make([]JobHandle, 0),
	}
}

func (q *ReadyQueue) Push(h JobHandle) {
	q.handles = append(q.handles, h)
}

// Head returns the oldest waiting handle.
func (q *ReadyQueue) Head() (JobHandle, bool) {
	if len(q.handles) == 0 {
		return NoJob, false
	}
	return q.handles[0], true
}

func (q *ReadyQueue) Remove(h JobHandle) bool {
	idx := slices.Index(q.handles, h)
	if idx == -1 {
		return false
	}
	q.handles = slices.Delete(q.handles, idx, idx+1)
	return true
}

func (q *ReadyQueue) Contains(h JobHandle) bool {
	return slices.Contains(q.handles, h)
}

func (q *ReadyQueue) Len() int {
	return len(q.handles)
}

func (q *ReadyQueue) Empty() bool {
	return len(q.handles) == 0
}

// Handles returns a copy, safe to range over while the queue is mutated.
func (q *ReadyQueue) Handles() []JobHandle {
	return slices.Clone(q.handles)
}
