package domain

import (
	"errors"
	"strings"
)

type AccountID int64

type Account struct {
	ID   AccountID
	Name string
}

type Session struct {
	BaseURL     string
	Token       string
	Method      AuthMethod
	RetryBudget int
	Account     *Account
}

var ErrEmptyToken = errors.New("bearer token is empty")

func NewSession(baseURL, token string, method AuthMethod, retryBudget int) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrEmptyToken
	}

	return &Session{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Token:       token,
		Method:      method,
		RetryBudget: retryBudget,
	}, nil
}

// AccountName is empty until the active account has been read back from the API.
func (s *Session) AccountName() string {
	if s == nil || s.Account == nil {
		return ""
	}

	return s.Account.Name
}
