package session

import (
	"sync"
	"time"
)

// Scheduler owns every timer a session runs. Each task is keyed by the state
// that created it ("break.tick", "camera.grace", ...) so exiting a state can
// cancel exactly its own timers without touching unrelated ones.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	tickers map[string]chan struct{}
	stopped bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		timers:  make(map[string]*time.Timer),
		tickers: make(map[string]chan struct{}),
	}
}

// After schedules fn once after d, replacing any pending task with the same
// name.
func (s *Scheduler) After(name string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked(name)
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.timers[name] == t {
			delete(s.timers, name)
		}
		stopped := s.stopped
		s.mu.Unlock()
		if !stopped {
			fn()
		}
	})
	s.timers[name] = t
}

// Every runs fn on a fixed interval until the task is cancelled.
func (s *Scheduler) Every(name string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked(name)
	stop := make(chan struct{})
	s.tickers[name] = stop
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Cancel stops the named task if it is still pending. Stopping a timer whose
// callback already fired is a no-op.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(name)
}

func (s *Scheduler) cancelLocked(name string) {
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
	if stop, ok := s.tickers[name]; ok {
		close(stop)
		delete(s.tickers, name)
	}
}

// Active reports whether a task with the given name is pending. Used by tests
// and by the engine to assert no timer is scheduled for empty timelines.
func (s *Scheduler) Active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, t := s.timers[name]
	_, k := s.tickers[name]
	return t || k
}

// Stop cancels everything and rejects further scheduling. Called exactly once
// when the owning session is left.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for name := range s.timers {
		s.timers[name].Stop()
		delete(s.timers, name)
	}
	for name := range s.tickers {
		close(s.tickers[name])
		delete(s.tickers, name)
	}
}
