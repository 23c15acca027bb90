package service

import (
	"sync"
	"time"
)

// TaskKind identifies one of the deferred tasks a conversation can have pending
type TaskKind string

const (
	// TaskReply delivers the bot reply after the artificial typing delay
	TaskReply TaskKind = "reply"
	// TaskNudge sends the idleness prompt
	TaskNudge TaskKind = "nudge"
)

type taskKey struct {
	conversationID string
	kind           TaskKind
}

type scheduledTask struct {
	timer *time.Timer
	seq   uint64
}

// Scheduler runs cancellable deferred tasks keyed by conversation and kind.
// Scheduling a task replaces any pending task with the same key.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[taskKey]*scheduledTask
	seq     uint64
	stopped bool
	wg      sync.WaitGroup
}

// NewScheduler creates an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[taskKey]*scheduledTask)}
}

// Schedule arms fn to run after delay, cancelling the pending task of the
// same kind for the conversation
func (s *Scheduler) Schedule(conversationID string, kind TaskKind, delay time.Duration, fn func()) {
	key := taskKey{conversationID, kind}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked(key)

	s.seq++
	seq := s.seq
	task := &scheduledTask{seq: seq}
	s.wg.Add(1)
	task.timer = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		s.mu.Lock()
		current, ok := s.tasks[key]
		if !ok || current.seq != seq {
			s.mu.Unlock()
			return
		}
		delete(s.tasks, key)
		s.mu.Unlock()
		fn()
	})
	s.tasks[key] = task
}

// Cancel stops the pending task of the given kind. It reports whether a
// task was pending.
func (s *Scheduler) Cancel(conversationID string, kind TaskKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(taskKey{conversationID, kind})
}

// CancelAll stops every pending task of a conversation
func (s *Scheduler) CancelAll(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(taskKey{conversationID, TaskReply})
	s.cancelLocked(taskKey{conversationID, TaskNudge})
}

// Pending reports whether a task of the given kind is armed
func (s *Scheduler) Pending(conversationID string, kind TaskKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[taskKey{conversationID, kind}]
	return ok
}

// Stop cancels all pending tasks, waits for running ones and refuses new ones
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for key := range s.tasks {
		s.cancelLocked(key)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) cancelLocked(key taskKey) bool {
	task, ok := s.tasks[key]
	if !ok {
		return false
	}
	delete(s.tasks, key)
	if task.timer.Stop() {
		// the callback will never run, so release its slot here
		s.wg.Done()
	}
	return true
}
