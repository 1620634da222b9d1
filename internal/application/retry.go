package application

import (
	"context"
	"errors"
	"io"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/sirupsen/logrus"
)

// DefaultRetryBudget allows four real attempts.
const DefaultRetryBudget = 5

type Retrier struct {
	budget int
	log    *logrus.Entry
}

func NewRetrier(budget int, log *logrus.Entry) *Retrier {
	if budget < 1 {
		budget = 1
	}

	return &Retrier{budget: budget, log: componentLogger(log, "retry")}
}

// Attempts is the maximum number of times an operation runs: one less than the budget.
// A budget of 1 runs nothing.
func (r *Retrier) Attempts() int {
	return r.budget - 1
}

func Retry[T any](ctx context.Context, r *Retrier, op string, fn func(context.Context) (T, error)) (T, error) {
	return RetryWith(ctx, r, op, domain.IsRetryable, fn)
}

// RetryWith runs fn until it succeeds, fails with an error retryable rejects, or the budget is spent.
func RetryWith[T any](ctx context.Context, r *Retrier, op string, retryable func(error) bool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var last error
	attempts := r.Attempts()

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, &domain.FatalError{Operation: op, Err: err}
		}

		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}

		fields := logrus.Fields{"operation": op, "attempt": attempt, "attempts": attempts}
		if !retryable(err) {
			r.log.WithFields(fields).WithError(err).Error("operation failed with a non-retryable error")
			return zero, &domain.FatalError{Operation: op, Err: err}
		}

		r.log.WithFields(fields).WithError(err).Warn("operation attempt failed")
		last = err
	}

	r.log.WithFields(logrus.Fields{"operation": op, "attempts": attempts}).Error("operation retries exhausted")
	return zero, &domain.RetriesExhaustedError{Operation: op, Attempts: attempts, Last: last}
}

// RetryUnlessCanceled treats every failure as retryable except context cancellation.
func RetryUnlessCanceled(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}

func componentLogger(log *logrus.Entry, component string) *logrus.Entry {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = logrus.NewEntry(discard)
	}

	return log.WithField("component", component)
}
