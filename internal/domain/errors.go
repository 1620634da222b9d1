package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrLroIncomplete    = errors.New("operation did not complete")
	ErrBuildingNotFound = errors.New("building not found")
	ErrNoFloors         = errors.New("no floors found")
	ErrNoDevices        = errors.New("no connected devices found")
	ErrNoAccounts       = errors.New("no external accounts found")
	ErrMissingToken     = errors.New("access_token missing")
)

type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type MalformedResponseError struct {
	URL    string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response from %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed response from %s: %s", e.URL, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

type HTTPStatusError struct {
	Code         int
	URL          string
	ErrorMessage string
}

func (e *HTTPStatusError) Error() string {
	if e.ErrorMessage != "" {
		return fmt.Sprintf("%s returned %d: %s", e.URL, e.Code, e.ErrorMessage)
	}
	return fmt.Sprintf("%s returned %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Retryable is false for client errors the server explained with a vendor message.
func (e *HTTPStatusError) Retryable() bool {
	if e.Code >= http.StatusInternalServerError || e.Code == http.StatusTooManyRequests {
		return true
	}

	return e.ErrorMessage == ""
}

type RetriesExhaustedError struct {
	Operation string
	Attempts  int
	Last      error
}

func (e *RetriesExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("%s: retry budget allows no attempts", e.Operation)
	}
	return fmt.Sprintf("%s: failed after %d attempts: %v", e.Operation, e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }

type FatalError struct {
	Operation string
	Err       error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

type LroIncompleteError struct {
	Location string
	Attempts int
}

func (e *LroIncompleteError) Error() string {
	return fmt.Sprintf("operation %s did not complete after %d polls", e.Location, e.Attempts)
}

func (e *LroIncompleteError) Is(target error) bool { return target == ErrLroIncomplete }

type LroFailedError struct {
	Location string
	Status   string
	Err      error
}

func (e *LroFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("operation %s failed: %v", e.Location, e.Err)
	}
	return fmt.Sprintf("operation %s failed with status %q", e.Location, e.Status)
}

func (e *LroFailedError) Unwrap() error { return e.Err }

func (e *LroFailedError) Is(target error) bool { return target == ErrLroIncomplete }

type AccountSwitchMismatchError struct {
	Requested string
	Actual    string
}

func (e *AccountSwitchMismatchError) Error() string {
	return fmt.Sprintf("switched to account %q but the API reports %q", e.Requested, e.Actual)
}

type MultipleBuildingsError struct {
	Query string
	Names []string
}

func (e *MultipleBuildingsError) Error() string {
	return fmt.Sprintf("multiple buildings found with the name %q: %s", e.Query, strings.Join(e.Names, ", "))
}

type BuildingMismatchError struct {
	Query string
	Found string
}

func (e *BuildingMismatchError) Error() string {
	return fmt.Sprintf("building %q does not match what was found: %q", e.Query, e.Found)
}

// IsRetryable classifies an error for the default retry policy.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) && !isTransport(err) {
		return false
	}
	// a well-formed reply without a token will not change on resend
	if errors.Is(err, ErrMissingToken) {
		return false
	}

	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return true
	}
	if isTransport(err) {
		return true
	}
	var status *HTTPStatusError
	if errors.As(err, &status) {
		return status.Retryable()
	}

	return false
}

func isTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}

// IsLookupError reports errors the operator can recover from by entering another building.
func IsLookupError(err error) bool {
	var multiple *MultipleBuildingsError
	var mismatch *BuildingMismatchError
	return errors.Is(err, ErrBuildingNotFound) || errors.As(err, &multiple) || errors.As(err, &mismatch)
}
