package xiq

import (
	"context"
	"fmt"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/bnema/xiq-poe-check/internal/ports"
	"github.com/cockroachdb/errors"
)

var _ ports.SessionAPI = (*Client)(nil)

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	body, _, err := c.post(ctx, "/login", loginRequest{Username: creds.Username, Password: creds.Password})
	if err != nil {
		return "", errors.Wrap(err, "login")
	}

	return accessToken("/login", body)
}

func (c *Client) CurrentAccount(ctx context.Context) (domain.Account, error) {
	body, err := c.get(ctx, "/account/home")
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "get home account")
	}

	account, err := decodeInto[accountResponse]("/account/home", body)
	if err != nil {
		return domain.Account{}, err
	}
	if account.Name == "" {
		return domain.Account{}, &domain.MalformedResponseError{URL: "/account/home", Reason: "account name missing"}
	}

	return domain.Account{ID: domain.AccountID(account.ID), Name: account.Name}, nil
}

func (c *Client) ExternalAccounts(ctx context.Context) ([]domain.Account, error) {
	body, err := c.get(ctx, "/account/external")
	if err != nil {
		return nil, errors.Wrap(err, "list external accounts")
	}

	decoded, err := decodeInto[[]accountResponse]("/account/external", body)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(decoded))
	for _, account := range decoded {
		accounts = append(accounts, domain.Account{ID: domain.AccountID(account.ID), Name: account.Name})
	}

	return accounts, nil
}

func (c *Client) SwitchAccount(ctx context.Context, id domain.AccountID) (string, error) {
	path := fmt.Sprintf("/account/:switch?id=%d", id)
	body, created, err := c.post(ctx, path, nil)
	if err != nil {
		return "", errors.Wrapf(err, "switch to account %d", id)
	}
	if created {
		return "", &domain.MalformedResponseError{URL: path, Reason: "switch returned no token"}
	}

	return accessToken(path, body)
}

func accessToken(endpoint string, body []byte) (string, error) {
	token, err := decodeInto[tokenResponse](endpoint, body)
	if err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", &domain.MalformedResponseError{URL: endpoint, Reason: "no token in response", Err: domain.ErrMissingToken}
	}

	return token.AccessToken, nil
}
