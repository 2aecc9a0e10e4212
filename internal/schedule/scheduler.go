// Package schedule runs delayed callbacks against simulated time. Time only
// moves when the owner calls Advance, so every timer fires on a frame
// boundary and tests can step time deterministically.
package schedule

import (
	"slices"
	"time"
)

// task is a single pending callback.
type task struct {
	key string
	due time.Duration
	seq uint64
	fn  func()
}

// Scheduler holds at most one pending task per key.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	tasks map[string]*task
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[string]*task),
	}
}

// Now returns the simulated time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Schedule runs fn once delay has elapsed. A task already pending under key
// is canceled and replaced.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	s.tasks[key] = &task{
		key: key,
		due: s.now + delay,
		seq: s.seq,
		fn:  fn,
	}
}

// Cancel removes the task pending under key. Returns false if there was none.
func (s *Scheduler) Cancel(key string) bool {
	if _, ok := s.tasks[key]; !ok {
		return false
	}
	delete(s.tasks, key)
	return true
}

// CancelAll drops every pending task.
func (s *Scheduler) CancelAll() {
	clear(s.tasks)
}

// Pending reports whether a task is waiting under key.
func (s *Scheduler) Pending(key string) bool {
	_, ok := s.tasks[key]
	return ok
}

// Remaining returns how long until the task under key fires.
func (s *Scheduler) Remaining(key string) (time.Duration, bool) {
	t, ok := s.tasks[key]
	if !ok {
		return 0, false
	}
	return t.due - s.now, true
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Advance moves simulated time forward by dt and fires every task that has
// come due, earliest first. A task is removed before its callback runs, so
// the callback may schedule under its own key again.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt > 0 {
		s.now += dt
	}

	for {
		next := s.nextDue()
		if next == nil {
			return
		}
		delete(s.tasks, next.key)
		next.fn()
	}
}

// nextDue returns the earliest task due at or before now.
func (s *Scheduler) nextDue() *task {
	var due []*task
	for _, t := range s.tasks {
		if t.due <= s.now {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}

	return slices.MinFunc(due, func(a, b *task) int {
		if a.due != b.due {
			if a.due < b.due {
				return -1
			}
			return 1
		}
		if a.seq < b.seq {
			return -1
		}
		return 1
	})
}
