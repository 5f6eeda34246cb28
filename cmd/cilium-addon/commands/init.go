package commands

import (
	"github.com/spf13/cobra"

	"github.com/testruction/cilium-addon/cmd/cilium-addon/handlers"
	"github.com/testruction/cilium-addon/internal/config"
)

// Init returns the command for interactively creating a blueprint.
//
// Flags:
//
//	--output, -o: Path to output file (default "cilium-addon.yaml")
//	--force, -f: Overwrite an existing file
func Init(a *app) *cobra.Command {
	var (
		outputPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a blueprint",
		Long: `Interactively create a blueprint file.

The wizard asks about:

  - The cluster name and region
  - The release namespace and chart version
  - Addons already installed in the cluster
  - Whether the Hubble UI gets an ALB ingress, and its certificate

Unanswered settings keep the addon defaults.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), a.env, outputPath, force)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultConfigFilename, "Output file path")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}
