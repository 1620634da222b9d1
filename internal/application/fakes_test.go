package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bnema/xiq-poe-check/internal/domain"
)

type pollResult struct {
	snapshot domain.OperationSnapshot
	err      error
}

type fakeCLIAPI struct {
	submitErrs  []error
	location    string
	polls       []pollResult
	submitCalls int
	pollCalls   int
	lastJob     domain.CliJob
}

func (f *fakeCLIAPI) SubmitCLI(_ context.Context, job domain.CliJob) (string, error) {
	f.submitCalls++
	f.lastJob = job
	if f.submitCalls <= len(f.submitErrs) && f.submitErrs[f.submitCalls-1] != nil {
		return "", f.submitErrs[f.submitCalls-1]
	}
	return f.location, nil
}

func (f *fakeCLIAPI) PollOperation(_ context.Context, _ string) (domain.OperationSnapshot, error) {
	f.pollCalls++
	if len(f.polls) == 0 {
		return domain.OperationSnapshot{Status: domain.LroStatusRunning}, nil
	}
	idx := f.pollCalls - 1
	if idx >= len(f.polls) {
		idx = len(f.polls) - 1
	}
	return f.polls[idx].snapshot, f.polls[idx].err
}

type fakeWaiter struct {
	waits  []time.Duration
	err    error
	cancel context.CancelFunc
}

func (w *fakeWaiter) Wait(ctx context.Context, d time.Duration, _ string) error {
	w.waits = append(w.waits, d)
	if w.cancel != nil {
		w.cancel()
		return ctx.Err()
	}
	return w.err
}

type recordingObserver struct {
	submitted []string
	polls     []int
	pages     [][2]int
}

func (o *recordingObserver) Submitted(_ int, location string) {
	o.submitted = append(o.submitted, location)
}

func (o *recordingObserver) PollAttempt(attempt, _ int) {
	o.polls = append(o.polls, attempt)
}

func (o *recordingObserver) PageCollected(page, total int) {
	o.pages = append(o.pages, [2]int{page, total})
}

type fakeSessionAPI struct {
	token       string
	loginErrs   []error
	loginToken  string
	loginCalls  int
	home        []domain.Account
	homeErr     error
	homeCalls   int
	external    []domain.Account
	externalErr error
	switchToken string
	switchErr   error
	switchedTo  []domain.AccountID
}

func (f *fakeSessionAPI) Login(_ context.Context, _ domain.Credentials) (string, error) {
	f.loginCalls++
	if f.loginCalls <= len(f.loginErrs) && f.loginErrs[f.loginCalls-1] != nil {
		return "", f.loginErrs[f.loginCalls-1]
	}
	return f.loginToken, nil
}

func (f *fakeSessionAPI) SetToken(token string) { f.token = token }

func (f *fakeSessionAPI) CurrentAccount(_ context.Context) (domain.Account, error) {
	f.homeCalls++
	if f.homeErr != nil {
		return domain.Account{}, f.homeErr
	}
	idx := f.homeCalls - 1
	if idx >= len(f.home) {
		idx = len(f.home) - 1
	}
	return f.home[idx], nil
}

func (f *fakeSessionAPI) ExternalAccounts(_ context.Context) ([]domain.Account, error) {
	return f.external, f.externalErr
}

func (f *fakeSessionAPI) SwitchAccount(_ context.Context, id domain.AccountID) (string, error) {
	f.switchedTo = append(f.switchedTo, id)
	return f.switchToken, f.switchErr
}

type fakeDirectoryAPI struct {
	buildings     []domain.LocationNode
	buildingTotal int
	children      []domain.LocationNode
	pages         map[domain.LocationID][]domain.DevicePage
	queries       []domain.DeviceQuery
	connected     map[domain.DeviceID]bool
}

func (f *fakeDirectoryAPI) FindBuildings(_ context.Context, _ string) ([]domain.LocationNode, int, error) {
	return f.buildings, f.buildingTotal, nil
}

func (f *fakeDirectoryAPI) LocationChildren(_ context.Context, _ domain.LocationID) ([]domain.LocationNode, error) {
	return f.children, nil
}

func (f *fakeDirectoryAPI) ListDevices(_ context.Context, query domain.DeviceQuery) (domain.DevicePage, error) {
	f.queries = append(f.queries, query)
	pages := f.pages[query.LocationID]
	if query.Page-1 >= len(pages) {
		return domain.DevicePage{Page: query.Page, TotalPages: len(pages)}, nil
	}
	return pages[query.Page-1], nil
}

func (f *fakeDirectoryAPI) DeviceConnected(_ context.Context, id domain.DeviceID) (bool, error) {
	return f.connected[id], nil
}

func testSession(budget int) *domain.Session {
	return &domain.Session{BaseURL: "https://api.example.test", Token: "tok", Method: domain.AuthMethodToken, RetryBudget: budget}
}

func doneSnapshot(raw string) domain.OperationSnapshot {
	return domain.OperationSnapshot{Done: true, Status: "SUCCEEDED", Response: json.RawMessage(raw)}
}
