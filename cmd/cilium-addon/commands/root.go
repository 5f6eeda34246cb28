// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/testruction/cilium-addon/cmd/cilium-addon/handlers"
	"github.com/testruction/cilium-addon/internal/config"
	"github.com/testruction/cilium-addon/internal/logging"
)

// app holds the state shared by the subcommands of one root command.
type app struct {
	v   *viper.Viper
	env handlers.Env
}

// setup resolves settings from flags and CILIUM_ADDON_* variables and
// builds the logger. It runs before every subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	settings, err := config.LoadSettings(a.v)
	if err != nil {
		return err
	}
	logger, err := logging.New(settings.LogLevel, settings.Development)
	if err != nil {
		return err
	}

	a.env = handlers.Env{
		Settings: settings,
		Logger:   logger,
		Out:      cmd.OutOrStdout(),
	}
	return nil
}

// Root returns the root command for the cilium-addon CLI.
func Root() *cobra.Command {
	a := &app{v: config.NewViper()}

	cmd := &cobra.Command{
		Use:               "cilium-addon",
		Short:             "Compute and install the Cilium Helm release for EKS clusters",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringP(config.KeyConfig, "c", config.DefaultConfigFilename, "Path to the blueprint file")
	flags.String(config.KeyKubeconfig, "", "Path to the kubeconfig file (default: KUBECONFIG or ~/.kube/config)")
	flags.String(config.KeyKubeContext, "", "Kubeconfig context to use")
	flags.String(config.KeyLogLevel, "info", "Log level: debug, info, warn or error")
	flags.Bool(config.KeyDevelopment, false, "Human readable log output")
	flags.String(config.KeyS3Endpoint, "", "Endpoint of an S3 compatible store for s3:// references")

	cmd.AddCommand(Init(a))
	cmd.AddCommand(Values(a))
	cmd.AddCommand(Template(a))
	cmd.AddCommand(Install(a))
	cmd.AddCommand(Version())

	return cmd
}
