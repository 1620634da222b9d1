package application

import (
	"context"
	"strconv"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/sirupsen/logrus"
)

type Report struct {
	Building string
	Check    domain.Check
	Rows     []domain.ReportRow
}

type PowerCheckService struct {
	directory *DirectoryService
	poller    *LROPoller
	check     domain.Check
	extractor *domain.Extractor
	verify    bool
	log       *logrus.Entry
}

type PowerCheckOptions struct {
	Check           domain.Check
	VerifyConnected bool
}

func NewPowerCheckService(directory *DirectoryService, poller *LROPoller, opts PowerCheckOptions, log *logrus.Entry) (*PowerCheckService, error) {
	extractor, err := domain.NewExtractor(opts.Check)
	if err != nil {
		return nil, err
	}

	return &PowerCheckService{
		directory: directory,
		poller:    poller,
		check:     opts.Check,
		extractor: extractor,
		verify:    opts.VerifyConnected,
		log:       componentLogger(log, "powercheck"),
	}, nil
}

// Run collects the devices on floors, runs the check commands, and builds one row per device.
func (s *PowerCheckService) Run(ctx context.Context, session *domain.Session, building string, floors []domain.LocationNode) (Report, error) {
	devices, err := s.directory.CollectFloorDevices(ctx, session, floors)
	if err != nil {
		return Report{}, err
	}
	if s.verify {
		devices, err = s.directory.FilterConnected(ctx, session, devices)
		if err != nil {
			return Report{}, err
		}
	}
	s.log.WithFields(logrus.Fields{"building": building, "devices": len(devices)}).Info("collected devices")

	ids := domain.DeviceIDs(devices)
	outputs, err := s.poller.RunCLIJob(ctx, session, domain.CliJob{DeviceIDs: ids, Commands: s.check.Commands})
	if err != nil {
		return Report{}, err
	}

	return Report{Building: building, Check: s.check, Rows: s.Rows(ids, devices, outputs)}, nil
}

// Rows follows the order of ids. Devices without output are reported as such.
func (s *PowerCheckService) Rows(ids []domain.DeviceID, devices []domain.Device, outputs domain.PerDeviceOutput) []domain.ReportRow {
	hostnames := domain.HostnamesByID(devices)

	rows := make([]domain.ReportRow, 0, len(ids))
	for _, id := range ids {
		name, ok := hostnames[id]
		if !ok || name == "" {
			name = strconv.FormatInt(int64(id), 10)
		}

		output, ok := outputs.First(id)
		if !ok {
			s.log.WithField("hostname", name).Warn("no cli output returned for device")
			rows = append(rows, domain.ReportRow{Device: name, Value: domain.NoOutputValue})
			continue
		}

		value, matched := s.extractor.Extract(output.Output)
		if !matched {
			s.log.WithFields(logrus.Fields{"hostname": name, "output": output.Output}).Warn("check pattern did not match")
		}
		rows = append(rows, domain.ReportRow{Device: name, Value: value})
	}

	return rows
}
