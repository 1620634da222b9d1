package application

import (
	"context"
	"fmt"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/bnema/xiq-poe-check/internal/ports"
	"github.com/sirupsen/logrus"
)

type SessionService struct {
	api         ports.SessionAPI
	baseURL     string
	retryBudget int
	log         *logrus.Entry
}

func NewSessionService(api ports.SessionAPI, baseURL string, retryBudget int, log *logrus.Entry) *SessionService {
	if retryBudget <= 0 {
		retryBudget = DefaultRetryBudget
	}

	return &SessionService{api: api, baseURL: baseURL, retryBudget: retryBudget, log: componentLogger(log, "session")}
}

func (s *SessionService) AuthenticateWithToken(token string) (*domain.Session, error) {
	session, err := domain.NewSession(s.baseURL, token, domain.AuthMethodToken, s.retryBudget)
	if err != nil {
		return nil, err
	}
	s.api.SetToken(session.Token)
	s.log.Info("using supplied api token")

	return session, nil
}

func (s *SessionService) AuthenticateWithPassword(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	token, err := Retry(ctx, s.retrier(), "generate api token", func(ctx context.Context) (string, error) {
		return s.api.Login(ctx, creds)
	})
	if err != nil {
		return nil, err
	}

	session, err := domain.NewSession(s.baseURL, token, domain.AuthMethodPassword, s.retryBudget)
	if err != nil {
		return nil, err
	}
	s.api.SetToken(session.Token)
	s.log.WithField("username", creds.Username).Info("generated api token")

	return session, nil
}

// LoadCurrentAccount reads the active account and records it on the session.
func (s *SessionService) LoadCurrentAccount(ctx context.Context, session *domain.Session) (domain.Account, error) {
	account, err := Retry(ctx, s.retrier(), "get current account", s.api.CurrentAccount)
	if err != nil {
		return domain.Account{}, err
	}
	session.Account = &account

	return account, nil
}

// ListManagedAccounts returns the external accounts and the account the session is in.
// Callers may continue with the current account when this fails.
func (s *SessionService) ListManagedAccounts(ctx context.Context, session *domain.Session) ([]domain.Account, domain.Account, error) {
	current, err := s.LoadCurrentAccount(ctx, session)
	if err != nil {
		s.log.WithError(err).Warn("could not read the current account")
		return nil, domain.Account{}, fmt.Errorf("%w: %w", domain.ErrNoAccounts, err)
	}

	accounts, err := Retry(ctx, s.retrier(), "gather accessible external accounts", s.api.ExternalAccounts)
	if err != nil {
		s.log.WithError(err).Warn("could not list external accounts")
		return nil, current, fmt.Errorf("%w: %w", domain.ErrNoAccounts, err)
	}
	if len(accounts) == 0 {
		return nil, current, domain.ErrNoAccounts
	}

	return accounts, current, nil
}

// SwitchAccount installs the token for account and verifies the API now reports it as active.
func (s *SessionService) SwitchAccount(ctx context.Context, session *domain.Session, account domain.Account) error {
	op := fmt.Sprintf("switch to external account %s", account.Name)
	token, err := Retry(ctx, s.retrier(), op, func(ctx context.Context) (string, error) {
		return s.api.SwitchAccount(ctx, account.ID)
	})
	if err != nil {
		return err
	}

	s.api.SetToken(token)
	session.Token = token

	active, err := s.LoadCurrentAccount(ctx, session)
	if err != nil {
		return err
	}
	if active.Name != account.Name {
		s.log.WithFields(logrus.Fields{"requested": account.Name, "actual": active.Name}).Error("failed to switch external accounts")
		return &domain.AccountSwitchMismatchError{Requested: account.Name, Actual: active.Name}
	}
	s.log.WithField("account", active.Name).Info("switched external account")

	return nil
}

func (s *SessionService) retrier() *Retrier {
	return NewRetrier(s.retryBudget, s.log)
}
