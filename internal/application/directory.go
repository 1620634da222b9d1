package application

import (
	"context"
	"fmt"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/bnema/xiq-poe-check/internal/ports"
	"github.com/sirupsen/logrus"
)

const DefaultPageSize = 100

type DirectoryService struct {
	api      ports.DirectoryAPI
	observer ports.ProgressObserver
	pageSize int
	log      *logrus.Entry
}

func NewDirectoryService(api ports.DirectoryAPI, observer ports.ProgressObserver, pageSize int, log *logrus.Entry) *DirectoryService {
	if observer == nil {
		observer = ports.NoopObserver{}
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &DirectoryService{api: api, observer: observer, pageSize: pageSize, log: componentLogger(log, "directory")}
}

// ResolveFloors finds exactly one building named building and returns its floors.
func (d *DirectoryService) ResolveFloors(ctx context.Context, session *domain.Session, building string) ([]domain.LocationNode, error) {
	retrier := NewRetrier(session.RetryBudget, d.log)

	type lookup struct {
		nodes []domain.LocationNode
		total int
	}
	found, err := Retry(ctx, retrier, "gathering floors", func(ctx context.Context) (lookup, error) {
		nodes, total, err := d.api.FindBuildings(ctx, building)
		return lookup{nodes: nodes, total: total}, err
	})
	if err != nil {
		return nil, err
	}

	switch {
	case found.total == 0:
		return nil, fmt.Errorf("%w: no building was found with the name %s", domain.ErrBuildingNotFound, building)
	case found.total > 1 || len(found.nodes) != 1:
		return nil, &domain.MultipleBuildingsError{Query: building, Names: locationNames(found.nodes)}
	case found.nodes[0].Name != building:
		return nil, &domain.BuildingMismatchError{Query: building, Found: found.nodes[0].Name}
	}

	target := found.nodes[0]
	children, err := Retry(ctx, retrier, "gathering floors", func(ctx context.Context) ([]domain.LocationNode, error) {
		return d.api.LocationChildren(ctx, target.ID)
	})
	if err != nil {
		return nil, err
	}

	floors := domain.FloorsOf(children)
	if len(floors) == 0 {
		return nil, fmt.Errorf("%w: building %s has no floors", domain.ErrNoFloors, building)
	}
	d.log.WithFields(logrus.Fields{"building": building, "floors": len(floors)}).Info("resolved building floors")

	return floors, nil
}

// CollectDevices pages through the connected devices at a location.
func (d *DirectoryService) CollectDevices(ctx context.Context, session *domain.Session, locationID domain.LocationID) ([]domain.Device, error) {
	retrier := NewRetrier(session.RetryBudget, d.log)

	var devices []domain.Device
	for page := 1; ; page++ {
		query := domain.DeviceQuery{Page: page, Limit: d.pageSize, LocationID: locationID, ConnectedOnly: true}
		result, err := Retry(ctx, retrier, "collecting devices", func(ctx context.Context) (domain.DevicePage, error) {
			return d.api.ListDevices(ctx, query)
		})
		if err != nil {
			return nil, err
		}

		devices = append(devices, result.Devices...)
		d.observer.PageCollected(page, result.TotalPages)

		// a page number the server left out is the one requested
		if result.Page < page {
			result.Page = page
		}
		if result.Last() {
			return devices, nil
		}
	}
}

// CollectFloorDevices collects devices for each floor, keeping the first occurrence of a device id.
func (d *DirectoryService) CollectFloorDevices(ctx context.Context, session *domain.Session, floors []domain.LocationNode) ([]domain.Device, error) {
	seen := map[domain.DeviceID]struct{}{}
	var devices []domain.Device
	for _, floor := range floors {
		d.log.WithField("floor", floor.Name).Info("collecting devices for floor")
		floorDevices, err := d.CollectDevices(ctx, session, floor.ID)
		if err != nil {
			return nil, fmt.Errorf("collect devices for floor %s: %w", floor.Name, err)
		}

		for _, device := range floorDevices {
			if _, ok := seen[device.ID]; ok {
				continue
			}
			seen[device.ID] = struct{}{}
			devices = append(devices, device)
		}
	}

	if len(devices) == 0 {
		return nil, domain.ErrNoDevices
	}

	return devices, nil
}

// FilterConnected re-checks each device and drops the ones that went offline since listing.
func (d *DirectoryService) FilterConnected(ctx context.Context, session *domain.Session, devices []domain.Device) ([]domain.Device, error) {
	retrier := NewRetrier(session.RetryBudget, d.log)

	connected := make([]domain.Device, 0, len(devices))
	for _, device := range devices {
		ok, err := Retry(ctx, retrier, "checking device status", func(ctx context.Context) (bool, error) {
			return d.api.DeviceConnected(ctx, device.ID)
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			d.log.WithField("hostname", device.Hostname).Warn("device disconnected since listing")
			continue
		}
		connected = append(connected, device)
	}

	if len(connected) == 0 {
		return nil, domain.ErrNoDevices
	}

	return connected, nil
}

func locationNames(nodes []domain.LocationNode) []string {
	names := make([]string, 0, len(nodes))
	for _, node := range nodes {
		names = append(names, node.Name)
	}

	return names
}
