package commands

import (
	"github.com/spf13/cobra"

	"github.com/testruction/cilium-addon/cmd/cilium-addon/handlers"
	"github.com/testruction/cilium-addon/internal/config"
)

// Install returns the command installing or upgrading the Cilium release.
//
// Environment variables:
//
//	CILIUM_ADDON_DRY_RUN, CILIUM_ADDON_TIMEOUT, CILIUM_ADDON_PUSHGATEWAY
//	mirror the flags of the same name.
func Install(a *app) *cobra.Command {
	var opts handlers.InstallOptions

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install or upgrade the Cilium release",
		Long: `Install or upgrade the Cilium release in the cluster.

Addons already running in the cluster (aws-load-balancer-controller,
external-secrets) are discovered through their Deployments. Use
--skip-probe to rely on the blueprint's externalAddons only.

Examples:
  # Install using cilium-addon.yaml in the current directory
  cilium-addon install

  # Print the manifests instead of installing
  cilium-addon install --dry-run

  # Push deployment metrics when done
  cilium-addon install --pushgateway http://pushgateway:9091`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Install(cmd.Context(), a.env, opts)
		},
	}

	cmd.Flags().Bool(config.KeyDryRun, false, "Render the manifests instead of installing")
	cmd.Flags().String(config.KeyPushgateway, "", "Pushgateway URL for deployment metrics")
	cmd.Flags().Duration(config.KeyTimeout, config.DefaultTimeout, "Timeout for the install or upgrade")
	cmd.Flags().BoolVar(&opts.SkipProbe, "skip-probe", false, "Do not look for installed addons in the cluster")
	cmd.Flags().BoolVar(&opts.Wait, "wait", true, "Wait for the release resources to become ready")
	cmd.Flags().BoolVar(&opts.Progress, "progress", true, "Show install progress when attached to a terminal")
	cmd.Flags().StringVar(&opts.KubeVersion, "kube-version", "", "Kubernetes version used for dry runs")
	cmd.Flags().StringVar(&opts.ChartPath, "chart-path", "", "Install a local chart directory or archive instead of downloading the chart")

	return cmd
}
