// Package scheduler runs delayed one-shot tasks.
//
// Tasks are fire-and-forget: once scheduled they cannot be cancelled.
package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs f once after delay d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Timer schedules tasks on the wall clock.
type Timer struct{}

// NewTimer creates a wall-clock scheduler.
func NewTimer() Timer {
	return Timer{}
}

// AfterFunc runs f on its own goroutine after d.
func (Timer) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

type task struct {
	due time.Duration
	seq int
	fn  func()
}

// Manual is a scheduler driven by Advance. Tasks fire synchronously on the
// goroutine calling Advance, in due order.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []task
}

// NewManual creates a manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc records f to run once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	m.tasks = append(m.tasks, task{due: m.now + d, seq: m.seq, fn: f})
}

// Advance moves the clock forward by d and runs every task that became due.
// Tasks scheduled by a running task fire in the same call if they fall due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next, ok := m.popDue(target)
		if !ok {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.due
		m.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of tasks that have not fired yet.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *Manual) popDue(target time.Duration) (task, bool) {
	if len(m.tasks) == 0 {
		return task{}, false
	}

	sort.Slice(m.tasks, func(i, j int) bool {
		if m.tasks[i].due == m.tasks[j].due {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].due < m.tasks[j].due
	})

	if m.tasks[0].due > target {
		return task{}, false
	}

	next := m.tasks[0]
	m.tasks = m.tasks[1:]
	return next, true
}
