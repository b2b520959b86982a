// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ai

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy wraps a call with bounded retries and exponential backoff.
// Only errors the Retryable predicate accepts trigger another attempt.
type RetryPolicy struct {
	MaxAttempts int
	MinDelay    time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool

	// OnRetry is invoked after each transient failure, before the backoff
	// sleep. Advisory; may be nil.
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy mirrors the production schedule: 3 attempts total,
// backoff doubling from 4s capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		MinDelay:    4 * time.Second,
		MaxDelay:    10 * time.Second,
		Retryable:   IsTransient,
	}
}

// IsTransient reports whether err is classified as retry-eligible.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Do runs attempt until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. The last error is returned unwrapped so callers
// can classify it.
func (p RetryPolicy) Do(ctx context.Context, attempt func() error) error {
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	delay := p.MinDelay
	var lastErr error

	for i := 1; i <= p.MaxAttempts; i++ {
		lastErr = attempt()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if i == p.MaxAttempts {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(i, lastErr)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return lastErr
}
