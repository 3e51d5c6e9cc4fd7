package collection

import "sync"

// signal is an ordered listener list with removable entries.
type signal[F any] struct {
	mu      sync.Mutex
	next    int
	entries []signalEntry[F]
}

type signalEntry[F any] struct {
	id int
	fn F
}

func (s *signal[F]) add(fn F) func() {
	s.mu.Lock()
	s.next++
	id := s.next
	s.entries = append(s.entries, signalEntry[F]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, e := range s.entries {
				if e.id == id {
					s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *signal[F]) list() []F {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]F, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.fn
	}
	return out
}

func (s *signal[F]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
