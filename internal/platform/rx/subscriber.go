package rx

import (
	"context"
	"sync"
)

// subscriber delivers values in push order to a single consumer. The queue is
// unbounded so a slow consumer never blocks the producer and never loses values.
type subscriber[T any] struct {
	mu     sync.Mutex
	queue  []T
	closed bool
	notify chan struct{}
	out    chan T
}

func newSubscriber[T any]() *subscriber[T] {
	return &subscriber[T]{
		notify: make(chan struct{}, 1),
		out:    make(chan T),
	}
}

func (s *subscriber[T]) push(v T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	s.wake()
}

// close lets the consumer drain what is already queued, then ends the stream.
func (s *subscriber[T]) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wake()
}

func (s *subscriber[T]) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber[T]) run(ctx context.Context, onDone func()) {
	defer func() {
		close(s.out)
		onDone()
	}()

	var zero T
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-s.notify:
				continue
			case <-ctx.Done():
				return
			}
		}
		v := s.queue[0]
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-ctx.Done():
			return
		}
	}
}
