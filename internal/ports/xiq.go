package ports

import (
	"context"

	"github.com/bnema/xiq-poe-check/internal/domain"
)

type SessionAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	SetToken(token string)
	CurrentAccount(ctx context.Context) (domain.Account, error)
	ExternalAccounts(ctx context.Context) ([]domain.Account, error)
	SwitchAccount(ctx context.Context, id domain.AccountID) (string, error)
}

type DirectoryAPI interface {
	FindBuildings(ctx context.Context, name string) ([]domain.LocationNode, int, error)
	LocationChildren(ctx context.Context, parentID domain.LocationID) ([]domain.LocationNode, error)
	ListDevices(ctx context.Context, query domain.DeviceQuery) (domain.DevicePage, error)
	DeviceConnected(ctx context.Context, id domain.DeviceID) (bool, error)
}

type CLIAPI interface {
	// SubmitCLI returns the polling location of the accepted operation.
	SubmitCLI(ctx context.Context, job domain.CliJob) (string, error)
	PollOperation(ctx context.Context, location string) (domain.OperationSnapshot, error)
}
