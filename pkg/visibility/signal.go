package visibility

import "sync"

// Source delivers visibility transitions. The returned func removes the
// listener and is safe to call more than once.
type Source interface {
	Subscribe(fn func(visible bool)) (unsubscribe func())
}

// Signal is an in-process Source. Hosts call Set whenever their notion of
// visibility changes (terminal focus, window state); listeners only hear
// real transitions.
type Signal struct {
	mu        sync.Mutex
	visible   bool
	nextID    int
	listeners map[int]func(bool)
}

// NewSignal returns a Signal starting in the given state.
func NewSignal(visible bool) *Signal {
	return &Signal{visible: visible, listeners: map[int]func(bool){}}
}

// Visible returns the current state.
func (s *Signal) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Set records the new state and notifies listeners if it changed.
func (s *Signal) Set(visible bool) {
	s.mu.Lock()
	if s.visible == visible {
		s.mu.Unlock()
		return
	}
	s.visible = visible
	fns := make([]func(bool), 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(visible)
	}
}

// Subscribe implements Source.
func (s *Signal) Subscribe(fn func(bool)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Len returns the number of active listeners.
func (s *Signal) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
