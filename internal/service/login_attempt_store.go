package service

import (
	"context"
	"sync"
	"time"
)

type LoginAttempt struct {
	Count        int
	FirstFailure time.Time
}

// LoginAttemptStore keeps failure counters keyed by the identifier as typed.
type LoginAttemptStore interface {
	// GetAttempt returns nil when nothing is recorded for identifier.
	GetAttempt(ctx context.Context, identifier string) (*LoginAttempt, error)
	// RecordFailure increments the counter. A missing counter, or one whose
	// window started at least window ago, restarts at one with now as the start.
	RecordFailure(ctx context.Context, identifier string, now time.Time, window time.Duration) (LoginAttempt, error)
	ResetAttempts(ctx context.Context, identifier string) error
	// DeleteExpired drops counters whose window has ended and returns how many.
	DeleteExpired(ctx context.Context, now time.Time, window time.Duration) (int, error)
}

// MemoryAttemptStore lives for the lifetime of the process.
type MemoryAttemptStore struct {
	mutex    sync.Mutex
	attempts map[string]*LoginAttempt
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{
		attempts: make(map[string]*LoginAttempt),
	}
}

func (store *MemoryAttemptStore) GetAttempt(_ context.Context, identifier string) (*LoginAttempt, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	attempt, exists := store.attempts[identifier]

	if !exists {
		return nil, nil
	}

	copied := *attempt
	return &copied, nil
}

func (store *MemoryAttemptStore) RecordFailure(_ context.Context, identifier string, now time.Time, window time.Duration) (LoginAttempt, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	attempt, exists := store.attempts[identifier]

	if !exists || now.Sub(attempt.FirstFailure) >= window {
		attempt = &LoginAttempt{FirstFailure: now}
		store.attempts[identifier] = attempt
	}

	attempt.Count++

	return *attempt, nil
}

func (store *MemoryAttemptStore) ResetAttempts(_ context.Context, identifier string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	delete(store.attempts, identifier)

	return nil
}

func (store *MemoryAttemptStore) DeleteExpired(_ context.Context, now time.Time, window time.Duration) (int, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	deleted := 0

	for identifier, attempt := range store.attempts {
		if now.Sub(attempt.FirstFailure) >= window {
			delete(store.attempts, identifier)
			deleted++
		}
	}

	return deleted, nil
}
