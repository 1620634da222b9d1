package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/xiq-poe-check/internal/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const exitMessage = "script is exiting...."

var fatalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))

func Execute(ctx context.Context) error {
	root := newRootCmd()
	root.SetContext(ctx)
	return run(root)
}

func run(root *cobra.Command) error {
	err := root.Execute()
	if err != nil {
		printFatal(root.ErrOrStderr(), err)
	}
	return err
}

func printFatal(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, fatalStyle.Render(err.Error()))
	_, _ = fmt.Fprintln(w, fatalStyle.Render(exitMessage))
}

type rootOptions struct {
	configFile string
	building   string
	external   bool
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "xiq-poe-check",
		Short:         "Check PoE power status of the devices in an ExtremeCloud IQ building",
		Long:          "xiq-poe-check logs in to ExtremeCloud IQ, finds the floors of a building, runs a CLI command on every connected device there, and writes the parsed results to a CSV file.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, opts.configFile)
			if err != nil {
				return err
			}

			app, err := wireApp(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.InOrStdin())
			if err != nil {
				return err
			}

			return runCheck(cmd.Context(), app, cmd.OutOrStdout(), opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.building, "building", "", "Building name (prompted when empty)")
	flags.BoolVar(&opts.external, "external", false, "Select an external VIQ account before running")

	// config-bound flags are shared with the checks subcommands
	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&opts.configFile, "config", "", "Config file (default: ~/.xiq/config.toml)")
	persistent.String("token", "", "XIQ API token (default: $XIQ_API_TOKEN, otherwise prompt for credentials)")
	persistent.String("base-url", "", "XIQ API base URL")
	persistent.String("check", "", "Check profile name")
	persistent.String("check-file", "", "Check profiles file")
	persistent.String("output-dir", "", "Directory for the CSV report")
	persistent.Bool("verify-connected", false, "Re-check each device's connection state before sending the command")
	persistent.String("log-file", "", "Log file path")
	persistent.String("log-level", "", "Log level")

	bindFlags(v, rootCmd, map[string]string{
		"token":            config.KeyToken,
		"base-url":         config.KeyBaseURL,
		"check":            config.KeyCheck,
		"check-file":       config.KeyChecksFile,
		"output-dir":       config.KeyOutputDir,
		"verify-connected": config.KeyVerifyConnected,
		"log-file":         config.KeyLogFile,
		"log-level":        config.KeyLogLevel,
	})

	rootCmd.AddCommand(
		newVersionCmd(),
		newChecksCmd(v, opts),
	)

	return rootCmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
	}
}
