package session

import "sync"

type subscription struct {
	ch   chan string
	once sync.Once
}

// deliver replaces any undelivered value with v so a slow reader only ever
// sees the latest one.
func (sub *subscription) deliver(v string) {
	for {
		select {
		case sub.ch <- v:
			return
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
	}
}

// Subscribe streams the values of key. The current value is delivered
// immediately; afterwards every change is delivered, collapsing to the latest
// when the reader falls behind. cancel closes the channel and is safe to call
// more than once.
func (s *Store) Subscribe(key string) (<-chan string, func()) {
	sub := &subscription{ch: make(chan string, 1)}

	s.mu.Lock()
	if s.subs[key] == nil {
		s.subs[key] = make(map[*subscription]struct{})
	}
	s.subs[key][sub] = struct{}{}
	sub.ch <- s.values[key]
	s.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			s.mu.Lock()
			delete(s.subs[key], sub)
			if len(s.subs[key]) == 0 {
				delete(s.subs, key)
			}
			s.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// publish fans v out to subscribers of key. Caller holds s.mu.
func (s *Store) publish(key, v string) {
	for sub := range s.subs[key] {
		sub.deliver(v)
	}
}
