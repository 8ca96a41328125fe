package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// Executor orchestrates retry attempts with backoff and error classification.
// It is safe for concurrent use; WithOnRetry returns a new instance.
type Executor struct {
	classifier cimflat.ErrorClassifier
	strategy   cimflat.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor.
// Panics if classifier or strategy is nil.
func NewExecutor(classifier cimflat.ErrorClassifier, strategy cimflat.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// NewPostgreSQLExecutor returns an executor with the default PostgreSQL
// classification and backoff.
func NewPostgreSQLExecutor() *Executor {
	return NewExecutor(NewPostgreSQLErrorClassifier(), NewExponentialBackoff(cimflat.DefaultRetryMaxAttempts))
}

// WithOnRetry returns a new Executor calling callback before each retry.
// The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation until it succeeds, fails with a fatal error, or
// retries are exhausted. An error that survived retries is annotated with
// the number of attempts.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	maxAttempts := e.strategy.MaxAttempts()

	lastErr := operation(ctx)
	if lastErr == nil || !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	attempts := 1
	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		attempts++
		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}
		if !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}
