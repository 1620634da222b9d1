package xiq

import (
	"context"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/bnema/xiq-poe-check/internal/ports"
	"github.com/cockroachdb/errors"
)

const cliPath = "/devices/:cli?async=true"

var _ ports.CLIAPI = (*Client)(nil)

func (c *Client) SubmitCLI(ctx context.Context, job domain.CliJob) (string, error) {
	if err := job.Validate(); err != nil {
		return "", errors.Wrap(err, "submit cli job")
	}

	ids := make([]int64, 0, len(job.DeviceIDs))
	for _, id := range job.DeviceIDs {
		ids = append(ids, int64(id))
	}

	location, err := c.postAsync(ctx, cliPath, cliRequest{Devices: cliDevices{IDs: ids}, Clis: job.Commands})
	if err != nil {
		return "", errors.Wrap(err, "submit cli job")
	}

	return location, nil
}

func (c *Client) PollOperation(ctx context.Context, location string) (domain.OperationSnapshot, error) {
	body, err := c.get(ctx, location)
	if err != nil {
		return domain.OperationSnapshot{}, errors.Wrap(err, "poll operation")
	}

	op, err := decodeInto[operationResponse](location, body)
	if err != nil {
		return domain.OperationSnapshot{}, err
	}

	return domain.OperationSnapshot{Done: op.Done, Status: op.Metadata.Status, Response: op.Response, Raw: body}, nil
}
