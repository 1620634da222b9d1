package xiq

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/bnema/xiq-poe-check/internal/ports"
	"github.com/cockroachdb/errors"
)

var _ ports.DirectoryAPI = (*Client)(nil)

func (c *Client) FindBuildings(ctx context.Context, name string) ([]domain.LocationNode, int, error) {
	path := "/locations/building?" + url.Values{"name": {name}}.Encode()
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "find building %q", name)
	}

	page, err := decodeInto[pageEnvelope[locationResponse]](path, body)
	if err != nil {
		return nil, 0, err
	}

	buildings := make([]domain.LocationNode, 0, len(page.Data))
	for _, entry := range page.Data {
		node := toLocation(entry)
		if node.Type == "" {
			node.Type = domain.LocationTypeBuilding
		}
		buildings = append(buildings, node)
	}

	return buildings, page.TotalCount, nil
}

func (c *Client) LocationChildren(ctx context.Context, parentID domain.LocationID) ([]domain.LocationNode, error) {
	path := fmt.Sprintf("/locations/tree?parentId=%d&expandChildren=false", parentID)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "list children of location %d", parentID)
	}

	entries, err := decodeInto[[]locationResponse](path, body)
	if err != nil {
		return nil, err
	}

	nodes := make([]domain.LocationNode, 0, len(entries))
	for _, entry := range entries {
		nodes = append(nodes, toLocation(entry))
	}

	return nodes, nil
}

func (c *Client) ListDevices(ctx context.Context, query domain.DeviceQuery) (domain.DevicePage, error) {
	values := url.Values{}
	values.Set("views", "FULL")
	values.Set("page", strconv.Itoa(query.Page))
	values.Set("limit", strconv.Itoa(query.Limit))
	if query.ConnectedOnly {
		values.Set("connected", "true")
	}
	if query.LocationID != 0 {
		values.Set("locationId", strconv.FormatInt(int64(query.LocationID), 10))
	}
	path := "/devices?" + values.Encode()

	body, err := c.get(ctx, path)
	if err != nil {
		return domain.DevicePage{}, errors.Wrapf(err, "list devices page %d", query.Page)
	}

	page, err := decodeInto[pageEnvelope[deviceResponse]](path, body)
	if err != nil {
		return domain.DevicePage{}, err
	}

	devices := make([]domain.Device, 0, len(page.Data))
	for _, entry := range page.Data {
		devices = append(devices, domain.Device{
			ID:           domain.DeviceID(entry.ID),
			Hostname:     entry.Hostname,
			Connected:    entry.Connected,
			SerialNumber: entry.SerialNumber,
			ProductType:  entry.ProductType,
			IPAddress:    entry.IPAddress,
			LocationID:   domain.LocationID(entry.LocationID),
		})
	}

	return domain.DevicePage{
		Devices:    devices,
		Page:       page.Page,
		TotalPages: page.TotalPages,
		TotalCount: page.TotalCount,
	}, nil
}

func (c *Client) DeviceConnected(ctx context.Context, id domain.DeviceID) (bool, error) {
	path := fmt.Sprintf("/devices/%d?fields=CONNECTED", id)
	body, err := c.get(ctx, path)
	if err != nil {
		return false, errors.Wrapf(err, "check device %d", id)
	}

	device, err := decodeInto[deviceResponse](path, body)
	if err != nil {
		return false, err
	}

	return device.Connected, nil
}

func toLocation(entry locationResponse) domain.LocationNode {
	return domain.LocationNode{
		ID:       domain.LocationID(entry.ID),
		Name:     entry.Name,
		Type:     domain.LocationType(entry.Type),
		ParentID: domain.LocationID(entry.ParentID),
	}
}
