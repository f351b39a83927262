package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

type LockoutServiceConfig struct {
	MaxRetries int
	Timeout    time.Duration
	// Now defaults to time.Now
	Now func() time.Time
}

// LockoutService locks an identifier once MaxRetries failures land within
// Timeout of the first one. The lock lasts until that window ends. Expired
// counters are cleared lazily on the next check or failure, and by
// DeleteExpiredAttempts.
type LockoutService struct {
	config LockoutServiceConfig
	store  LoginAttemptStore
}

func NewLockoutService(config LockoutServiceConfig, store LoginAttemptStore) *LockoutService {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &LockoutService{
		config: config,
		store:  store,
	}
}

func (lockout *LockoutService) enabled() bool {
	return lockout.config.MaxRetries > 0 && lockout.config.Timeout > 0
}

// IsAccountLocked reports whether identifier is locked and, if so, the
// remaining lock time rounded up to whole minutes.
func (lockout *LockoutService) IsAccountLocked(ctx context.Context, identifier string) (bool, int, error) {
	if !lockout.enabled() {
		return false, 0, nil
	}

	attempt, err := lockout.store.GetAttempt(ctx, identifier)

	if err != nil {
		return false, 0, err
	}

	if attempt == nil || attempt.Count < lockout.config.MaxRetries {
		return false, 0, nil
	}

	remaining := lockout.config.Timeout - lockout.config.Now().Sub(attempt.FirstFailure)

	if remaining > 0 {
		return true, int(math.Ceil(float64(remaining.Milliseconds()) / 60000)), nil
	}

	log.Debug().Str("identifier", identifier).Msg("Lockout window elapsed, resetting attempts")

	if err := lockout.store.ResetAttempts(ctx, identifier); err != nil {
		return false, 0, err
	}

	return false, 0, nil
}

// RecordLoginAttempt clears the counter on success. On failure it counts the
// attempt and reports whether this failure locked the identifier.
func (lockout *LockoutService) RecordLoginAttempt(ctx context.Context, identifier string, success bool) (bool, error) {
	if !lockout.enabled() {
		return false, nil
	}

	if success {
		return false, lockout.store.ResetAttempts(ctx, identifier)
	}

	attempt, err := lockout.store.RecordFailure(ctx, identifier, lockout.config.Now(), lockout.config.Timeout)

	if err != nil {
		return false, err
	}

	if attempt.Count >= lockout.config.MaxRetries {
		log.Warn().Str("identifier", identifier).Int("attempts", attempt.Count).Dur("timeout", lockout.config.Timeout).Msg("Identifier locked due to too many failed login attempts")
		return true, nil
	}

	return false, nil
}

// LockoutMinutes is the full lock duration in minutes, for messages.
func (lockout *LockoutService) LockoutMinutes() int {
	return int(math.Ceil(lockout.config.Timeout.Minutes()))
}

func (lockout *LockoutService) DeleteExpiredAttempts(ctx context.Context) (int, error) {
	if !lockout.enabled() {
		return 0, nil
	}
	return lockout.store.DeleteExpired(ctx, lockout.config.Now(), lockout.config.Timeout)
}
