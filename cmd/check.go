package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bnema/xiq-poe-check/internal/adapters/prompt"
	reportrender "github.com/bnema/xiq-poe-check/internal/adapters/render/report"
	"github.com/bnema/xiq-poe-check/internal/domain"
	"github.com/sirupsen/logrus"
)

var errAborted = errors.New("aborted by operator")

func runCheck(ctx context.Context, app *app, out io.Writer, opts *rootOptions) error {
	session, err := authenticate(ctx, app)
	if err != nil {
		return err
	}

	if opts.external {
		if err := selectAccount(ctx, app, out, session); err != nil {
			return err
		}
	}

	building, floors, err := resolveBuilding(ctx, app, out, session, opts.building)
	if err != nil {
		return err
	}

	report, err := app.powerCheck.Run(ctx, session, building, floors)
	if err != nil {
		return err
	}
	app.log.WithFields(logrus.Fields{
		"building": building,
		"account":  session.AccountName(),
		"rows":     len(report.Rows),
	}).Info("check complete")

	rendered, err := app.reportRenderer(report.Rows, reportrender.RenderOptions{
		Building: building,
		Column:   report.Check.Column,
		OKValues: report.Check.OKValues,
	})
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, rendered)

	filename := domain.ReportFileName(building, report.Check)
	path := filepath.Join(app.cfg.Output.Dir, filename)
	_, _ = fmt.Fprintf(out, "Writing CSV File %s\n", filename)
	if err := app.reportWriter.Write(path, report.Check.Column, report.Rows); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	app.log.WithField("path", path).Info("wrote report")

	return nil
}

func authenticate(ctx context.Context, app *app) (*domain.Session, error) {
	if token := strings.TrimSpace(app.cfg.API.Token); token != "" {
		return app.sessions.AuthenticateWithToken(token)
	}

	creds, err := app.prompter.Credentials()
	if err != nil {
		return nil, err
	}

	return app.sessions.AuthenticateWithPassword(ctx, creds)
}

func selectAccount(ctx context.Context, app *app, out io.Writer, session *domain.Session) error {
	accounts, current, err := app.sessions.ListManagedAccounts(ctx, session)
	if errors.Is(err, domain.ErrNoAccounts) {
		app.log.WithError(err).Warn("continuing without external account selection")
		proceed, err := app.prompter.YesNo("No External accounts found. Would you like to run the check against your main account?")
		if err != nil {
			return promptError(err)
		}
		if !proceed {
			return errAborted
		}
		return nil
	}
	if err != nil {
		return err
	}

	selected, err := app.prompter.SelectAccount(accounts, current)
	if err != nil {
		return promptError(err)
	}
	if selected.ID == current.ID && selected.Name == current.Name {
		return nil
	}

	if err := app.sessions.SwitchAccount(ctx, session, selected); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Logged into %s\n", selected.Name)

	return nil
}

// resolveBuilding keeps asking for a building name until its floors resolve or the operator gives up.
func resolveBuilding(ctx context.Context, app *app, out io.Writer, session *domain.Session, building string) (string, []domain.LocationNode, error) {
	for {
		if strings.TrimSpace(building) == "" {
			name, err := app.prompter.Line("Please enter the name of the building: ")
			if err != nil {
				return "", nil, promptError(err)
			}
			building = name
			if building == "" {
				continue
			}
		}

		_, _ = fmt.Fprintln(out, "Collecting Location information")
		floors, err := app.directory.ResolveFloors(ctx, session, building)
		if err == nil {
			return building, floors, nil
		}
		if !domain.IsLookupError(err) {
			return "", nil, err
		}

		_, _ = fmt.Fprintln(out, err.Error())
		app.log.WithError(err).Error("building lookup failed")

		again, promptErr := app.prompter.YesNo("would you like to try again?")
		if promptErr != nil {
			return "", nil, promptError(promptErr)
		}
		if !again {
			return "", nil, errAborted
		}
		_, _ = fmt.Fprintln(out)
		building = ""
	}
}

func promptError(err error) error {
	if errors.Is(err, prompt.ErrQuit) {
		return errAborted
	}
	return err
}
