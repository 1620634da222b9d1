package application

import (
	"context"
	"time"

	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/bnema/xiq-poe-check/internal/ports"
	"github.com/sirupsen/logrus"
)

type LROConfig struct {
	InitialWait  time.Duration
	PollInterval time.Duration
	MaxPolls     int
}

func DefaultLROConfig() LROConfig {
	return LROConfig{
		InitialWait:  60 * time.Second,
		PollInterval: 120 * time.Second,
		MaxPolls:     10,
	}
}

type LROPoller struct {
	api      ports.CLIAPI
	waiter   ports.Waiter
	observer ports.ProgressObserver
	cfg      LROConfig
	log      *logrus.Entry
}

func NewLROPoller(api ports.CLIAPI, waiter ports.Waiter, observer ports.ProgressObserver, cfg LROConfig, log *logrus.Entry) *LROPoller {
	if waiter == nil {
		waiter = ports.TimerWaiter{}
	}
	if observer == nil {
		observer = ports.NoopObserver{}
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = DefaultLROConfig().MaxPolls
	}

	return &LROPoller{api: api, waiter: waiter, observer: observer, cfg: cfg, log: componentLogger(log, "lro")}
}

// RunCLIJob submits the job and polls its operation until done, failed, or out of attempts.
func (p *LROPoller) RunCLIJob(ctx context.Context, session *domain.Session, job domain.CliJob) (domain.PerDeviceOutput, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	op := &domain.LroOperation{State: domain.LroStateSubmitting}
	retrier := NewRetrier(session.RetryBudget, p.log)

	location, err := RetryWith(ctx, retrier, "submit cli job", RetryUnlessCanceled, func(ctx context.Context) (string, error) {
		return p.api.SubmitCLI(ctx, job)
	})
	if err != nil {
		p.transition(op, domain.LroStateAborted)
		return nil, err
	}
	op.Location = location
	p.observer.Submitted(len(job.DeviceIDs), location)
	p.log.WithFields(logrus.Fields{"location": location, "devices": len(job.DeviceIDs)}).Info("cli job accepted")

	p.transition(op, domain.LroStatePollingWait)
	if err := p.waiter.Wait(ctx, p.cfg.InitialWait, "Waiting for CLI responses"); err != nil {
		p.transition(op, domain.LroStateAborted)
		return nil, err
	}

	for attempt := 1; attempt <= p.cfg.MaxPolls; attempt++ {
		op.Attempt = attempt
		p.transition(op, domain.LroStatePolling)
		p.observer.PollAttempt(attempt, p.cfg.MaxPolls)

		snapshot, err := p.api.PollOperation(ctx, location)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				p.transition(op, domain.LroStateAborted)
				return nil, ctxErr
			}
			p.log.WithFields(logrus.Fields{"attempt": attempt, "max_polls": p.cfg.MaxPolls}).WithError(err).Warn("poll attempt failed")
		case snapshot.Done:
			op.Status = snapshot.Status
			outputs, err := domain.DecodePerDeviceOutput(snapshot.Response)
			if err != nil {
				p.transition(op, domain.LroStateFailed)
				return nil, &domain.LroFailedError{Location: location, Status: snapshot.Status, Err: err}
			}
			p.transition(op, domain.LroStateDone)
			return outputs, nil
		case !snapshot.Running():
			op.Status = snapshot.Status
			p.transition(op, domain.LroStateFailed)
			p.log.WithFields(logrus.Fields{"status": snapshot.Status, "payload": string(snapshot.Raw)}).Error("long-running operation failed")
			return nil, &domain.LroFailedError{Location: location, Status: snapshot.Status}
		default:
			op.Status = snapshot.Status
		}

		if attempt == p.cfg.MaxPolls {
			break
		}

		p.transition(op, domain.LroStatePollingWait)
		if err := p.waiter.Wait(ctx, p.cfg.PollInterval, "Waiting before the next poll"); err != nil {
			p.transition(op, domain.LroStateAborted)
			return nil, err
		}
	}

	p.transition(op, domain.LroStateFailed)
	return nil, &domain.LroIncompleteError{Location: location, Attempts: p.cfg.MaxPolls}
}

func (p *LROPoller) transition(op *domain.LroOperation, next domain.LroState) {
	from := op.State
	op.State = next
	entry := p.log.WithFields(logrus.Fields{
		"from":     from,
		"to":       next,
		"attempt":  op.Attempt,
		"location": op.Location,
		"status":   op.Status,
	})
	if next.Terminal() {
		entry.Info("operation finished")
		return
	}
	entry.Debug("operation state change")
}
