package application

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	value, err := Retry(context.Background(), NewRetrier(5, nil), "op", func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversFromTransientFailures(t *testing.T) {
	calls := 0
	value, err := Retry(context.Background(), NewRetrier(4, nil), "op", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &domain.TransportError{Method: http.MethodGet, URL: "u", Err: errors.New("connection reset")}
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 3, calls)
}

func TestRetryRunsBudgetMinusOneAttempts(t *testing.T) {
	for _, budget := range []int{2, 4, 5, 8} {
		calls := 0
		_, err := Retry(context.Background(), NewRetrier(budget, nil), "op", func(context.Context) (int, error) {
			calls++
			return 0, &domain.MalformedResponseError{URL: "u", Reason: "bad json"}
		})

		var exhausted *domain.RetriesExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, budget-1, calls)
		assert.Equal(t, budget-1, exhausted.Attempts)
		assert.Equal(t, "op", exhausted.Operation)

		var malformed *domain.MalformedResponseError
		assert.ErrorAs(t, err, &malformed)
	}
}

func TestRetryStopsOnFatalError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), NewRetrier(5, nil), "switch account", func(context.Context) (string, error) {
		calls++
		return "", &domain.HTTPStatusError{Code: http.StatusForbidden, ErrorMessage: "not allowed"}
	})

	var fatal *domain.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "switch account", fatal.Operation)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Retry(ctx, NewRetrier(5, nil), "op", func(context.Context) (int, error) {
		calls++
		return 1, nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetryWithUnlessCanceledRetriesUnknownErrors(t *testing.T) {
	calls := 0
	_, err := RetryWith(context.Background(), NewRetrier(5, nil), "submit", RetryUnlessCanceled, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("unexpected")
	})

	var exhausted *domain.RetriesExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 4, calls)
}

func TestRetrierAttemptsFollowBudget(t *testing.T) {
	assert.Equal(t, 0, NewRetrier(0, nil).Attempts())
	assert.Equal(t, 0, NewRetrier(1, nil).Attempts())
	assert.Equal(t, 1, NewRetrier(2, nil).Attempts())
	assert.Equal(t, DefaultRetryBudget-1, NewRetrier(DefaultRetryBudget, nil).Attempts())
}

func TestRetryBudgetOfOneNeverCalls(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), NewRetrier(1, nil), "op", func(context.Context) (int, error) {
		calls++
		return 1, nil
	})

	var exhausted *domain.RetriesExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, exhausted.Attempts)
	assert.NoError(t, exhausted.Last)
	assert.Equal(t, "op: retry budget allows no attempts", err.Error())
}
