// Package rx holds the small set of reactive building blocks the state
// containers are composed from: subjects, switch and exhaust.
package rx

import (
	"context"
	"sync"
)

// ValueSubject keeps the latest value and replays it to every new subscriber.
// With an equality function set, a value equal to the current one is dropped.
type ValueSubject[T any] struct {
	mu     sync.RWMutex
	value  T
	has    bool
	equal  func(a, b T) bool
	subs   map[uint64]*subscriber[T]
	nextID uint64
	closed bool
}

type Option[T any] func(*ValueSubject[T])

// WithEqual enables distinct-until-changed suppression.
func WithEqual[T any](equal func(a, b T) bool) Option[T] {
	return func(s *ValueSubject[T]) {
		s.equal = equal
	}
}

func NewValueSubject[T any](initial T, opts ...Option[T]) *ValueSubject[T] {
	s := NewEmptyValueSubject(opts...)
	s.value = initial
	s.has = true
	return s
}

// NewEmptyValueSubject creates a subject that emits nothing until the first Set.
func NewEmptyValueSubject[T any](opts ...Option[T]) *ValueSubject[T] {
	s := &ValueSubject[T]{subs: make(map[uint64]*subscriber[T])}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ValueSubject[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

func (s *ValueSubject[T]) HasValue() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.has
}

// Set stores v and pushes it to subscribers. It reports whether v was emitted.
func (s *ValueSubject[T]) Set(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if s.has && s.equal != nil && s.equal(s.value, v) {
		return false
	}
	s.value = v
	s.has = true
	for _, sub := range s.subs {
		sub.push(v)
	}
	return true
}

// Subscribe returns a stream that starts with the current value, if any.
// The stream is closed when ctx is done or the subject is closed.
func (s *ValueSubject[T]) Subscribe(ctx context.Context) <-chan T {
	sub := newSubscriber[T]()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.close()
		go sub.run(ctx, func() {})
		return sub.out
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	if s.has {
		sub.push(s.value)
	}
	s.mu.Unlock()

	go sub.run(ctx, func() { s.remove(id) })
	return sub.out
}

// Close ends every subscription and turns further Set calls into no-ops.
func (s *ValueSubject[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, sub := range s.subs {
		sub.close()
		delete(s.subs, id)
	}
}

func (s *ValueSubject[T]) remove(id uint64) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
}

// PublishSubject fans values out to the subscribers present at publish time.
type PublishSubject[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber[T]
	nextID uint64
	closed bool
}

func NewPublishSubject[T any]() *PublishSubject[T] {
	return &PublishSubject[T]{subs: make(map[uint64]*subscriber[T])}
}

// Publish reports false once the subject is closed.
func (s *PublishSubject[T]) Publish(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	for _, sub := range s.subs {
		sub.push(v)
	}
	return true
}

func (s *PublishSubject[T]) Subscribe(ctx context.Context) <-chan T {
	sub := newSubscriber[T]()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.close()
		go sub.run(ctx, func() {})
		return sub.out
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.mu.Unlock()

	go sub.run(ctx, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	})
	return sub.out
}

func (s *PublishSubject[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, sub := range s.subs {
		sub.close()
		delete(s.subs, id)
	}
}
