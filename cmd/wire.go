package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	checkstoml "github.com/bnema/xiq-poe-check/internal/adapters/checks/toml"
	"github.com/bnema/xiq-poe-check/internal/adapters/prompt"
	"github.com/bnema/xiq-poe-check/internal/adapters/render/countdown"
	reportrender "github.com/bnema/xiq-poe-check/internal/adapters/render/report"
	csvreport "github.com/bnema/xiq-poe-check/internal/adapters/report/csv"
	"github.com/bnema/xiq-poe-check/internal/adapters/xiq"
	"github.com/bnema/xiq-poe-check/internal/application"
	"github.com/bnema/xiq-poe-check/internal/config"
	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/bnema/xiq-poe-check/internal/logging"
	"github.com/bnema/xiq-poe-check/internal/ports"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

type app struct {
	cfg            config.Config
	log            *logrus.Entry
	prompter       *prompt.Prompter
	sessions       *application.SessionService
	directory      *application.DirectoryService
	powerCheck     *application.PowerCheckService
	reportWriter   ports.ReportWriter
	reportRenderer func([]domain.ReportRow, reportrender.RenderOptions) (string, error)
}

func wireApp(ctx context.Context, cfg config.Config, out io.Writer, in io.Reader) (*app, error) {
	log, err := logging.New(logging.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	client, err := xiq.New(xiq.Config{
		BaseURL:            cfg.API.BaseURL,
		Timeout:            cfg.API.Timeout,
		SubmitTimeout:      cfg.API.SubmitTimeout,
		RateLimitPerMinute: cfg.API.RateLimitPerMinute,
		Logger:             log,
	})
	if err != nil {
		return nil, fmt.Errorf("wire xiq client: %w", err)
	}

	check, err := loadCheck(ctx, cfg.Checks)
	if err != nil {
		return nil, err
	}

	observer := consoleObserver{out: out}
	directory := application.NewDirectoryService(client, observer, cfg.Devices.PageSize, log)
	poller := application.NewLROPoller(client, newWaiter(out), observer, application.LROConfig{
		InitialWait:  cfg.LRO.InitialWait,
		PollInterval: cfg.LRO.PollInterval,
		MaxPolls:     cfg.LRO.MaxPolls,
	}, log)

	powerCheck, err := application.NewPowerCheckService(directory, poller, application.PowerCheckOptions{
		Check:           check,
		VerifyConnected: cfg.Devices.VerifyConnected,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("wire power check: %w", err)
	}

	return &app{
		cfg:            cfg,
		log:            log,
		prompter:       prompt.New(in, out),
		sessions:       application.NewSessionService(client, cfg.API.BaseURL, cfg.Retry.Budget, log),
		directory:      directory,
		powerCheck:     powerCheck,
		reportWriter:   csvreport.Writer{},
		reportRenderer: reportrender.Render,
	}, nil
}

func loadCheck(ctx context.Context, cfg config.ChecksConfig) (domain.Check, error) {
	repo, err := checkstoml.NewRepository(cfg.File)
	if err != nil {
		return domain.Check{}, fmt.Errorf("wire checks repository: %w", err)
	}

	check, err := repo.GetByName(ctx, cfg.Name)
	if err != nil {
		return domain.Check{}, fmt.Errorf("load check profile: %w", err)
	}

	return check, nil
}

func newWaiter(out io.Writer) ports.Waiter {
	if file, ok := out.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return countdown.NewWaiter(out)
	}
	return countdown.NewLineWaiter(out)
}
