package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateWithToken(t *testing.T) {
	api := &fakeSessionAPI{}
	service := NewSessionService(api, "https://api.example.test", 0, nil)

	_, err := service.AuthenticateWithToken("")
	require.ErrorIs(t, err, domain.ErrEmptyToken)
	assert.Empty(t, api.token)

	session, err := service.AuthenticateWithToken("tok-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", api.token)
	assert.Equal(t, DefaultRetryBudget, session.RetryBudget)
	assert.Equal(t, domain.AuthMethodToken, session.Method)
}

func TestAuthenticateWithPasswordRetriesTransientFailures(t *testing.T) {
	api := &fakeSessionAPI{
		loginErrs:  []error{&domain.TransportError{Method: "POST", URL: "/login", Err: errors.New("eof")}},
		loginToken: "fresh",
	}
	service := NewSessionService(api, "https://api.example.test", 5, nil)

	session, err := service.AuthenticateWithPassword(context.Background(), domain.Credentials{Username: "admin", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, 2, api.loginCalls)
	assert.Equal(t, "fresh", session.Token)
	assert.Equal(t, "fresh", api.token)
}

func TestAuthenticateWithPasswordFatalOnRejectedCredentials(t *testing.T) {
	api := &fakeSessionAPI{
		loginErrs: []error{&domain.HTTPStatusError{Code: 401, ErrorMessage: "invalid credentials"}},
	}
	service := NewSessionService(api, "https://api.example.test", 5, nil)

	_, err := service.AuthenticateWithPassword(context.Background(), domain.Credentials{Username: "admin", Password: "bad"})
	var fatal *domain.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, 1, api.loginCalls)
}

func TestListManagedAccounts(t *testing.T) {
	api := &fakeSessionAPI{
		home:     []domain.Account{{ID: 1, Name: "Main"}},
		external: []domain.Account{{ID: 7, Name: "Tenant A"}},
	}
	service := NewSessionService(api, "https://api.example.test", 5, nil)
	session := testSession(5)

	accounts, current, err := service.ListManagedAccounts(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, []domain.Account{{ID: 7, Name: "Tenant A"}}, accounts)
	assert.Equal(t, "Main", current.Name)
	assert.Equal(t, "Main", session.AccountName())
}

func TestListManagedAccountsFailureIsReportedNotFatal(t *testing.T) {
	api := &fakeSessionAPI{
		home:        []domain.Account{{ID: 1, Name: "Main"}},
		externalErr: &domain.HTTPStatusError{Code: 403, ErrorMessage: "no access"},
	}
	service := NewSessionService(api, "https://api.example.test", 5, nil)

	accounts, current, err := service.ListManagedAccounts(context.Background(), testSession(5))
	require.ErrorIs(t, err, domain.ErrNoAccounts)
	assert.Nil(t, accounts)
	assert.Equal(t, "Main", current.Name)
}

func TestListManagedAccountsHomeFailureIsReportedNotFatal(t *testing.T) {
	api := &fakeSessionAPI{
		homeErr:  &domain.HTTPStatusError{Code: 403, ErrorMessage: "forbidden"},
		external: []domain.Account{{ID: 7, Name: "Tenant A"}},
	}
	service := NewSessionService(api, "https://api.example.test", 5, nil)
	session := testSession(5)

	accounts, _, err := service.ListManagedAccounts(context.Background(), session)
	require.ErrorIs(t, err, domain.ErrNoAccounts)
	var status *domain.HTTPStatusError
	require.ErrorAs(t, err, &status)
	assert.Nil(t, accounts)
	assert.Empty(t, session.AccountName())
}

func TestSwitchAccountVerifiesIdentity(t *testing.T) {
	api := &fakeSessionAPI{
		home:        []domain.Account{{ID: 7, Name: "Tenant A"}},
		switchToken: "tenant-token",
	}
	service := NewSessionService(api, "https://api.example.test", 5, nil)
	session := testSession(5)

	err := service.SwitchAccount(context.Background(), session, domain.Account{ID: 7, Name: "Tenant A"})
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountID{7}, api.switchedTo)
	assert.Equal(t, "tenant-token", api.token)
	assert.Equal(t, "tenant-token", session.Token)
	assert.Equal(t, "Tenant A", session.AccountName())
}

func TestSwitchAccountMismatch(t *testing.T) {
	api := &fakeSessionAPI{
		home:        []domain.Account{{ID: 1, Name: "Main"}},
		switchToken: "tenant-token",
	}
	service := NewSessionService(api, "https://api.example.test", 5, nil)

	err := service.SwitchAccount(context.Background(), testSession(5), domain.Account{ID: 7, Name: "Tenant A"})

	var mismatch *domain.AccountSwitchMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "Tenant A", mismatch.Requested)
	assert.Equal(t, "Main", mismatch.Actual)
}
