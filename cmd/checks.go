package cmd

import (
	"fmt"
	"strings"

	checkstoml "github.com/bnema/xiq-poe-check/internal/adapters/checks/toml"
	"github.com/bnema/xiq-poe-check/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newChecksCmd(v *viper.Viper, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checks",
		Short: "Manage check profiles",
	}

	cmd.AddCommand(
		newChecksListCmd(v, opts),
		newChecksInitCmd(v, opts),
	)

	return cmd
}

func newChecksListCmd(v *viper.Viper, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available check profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := checksRepository(v, opts)
			if err != nil {
				return err
			}

			checks, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}

			for _, check := range checks {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", check.Name, check.Column, strings.Join(check.Commands, "; "))
			}

			return nil
		},
	}
}

func newChecksInitCmd(v *viper.Viper, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a check profiles file holding the built-in PoE check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := checksRepository(v, opts)
			if err != nil {
				return err
			}

			created, err := repo.WriteDefaults(cmd.Context())
			if err != nil {
				return err
			}
			if !created {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", repo.Path())
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", repo.Path())
			return err
		},
	}
}

func checksRepository(v *viper.Viper, opts *rootOptions) (*checkstoml.Repository, error) {
	cfg, err := config.Load(v, opts.configFile)
	if err != nil {
		return nil, err
	}

	return checkstoml.NewRepository(cfg.Checks.File)
}
