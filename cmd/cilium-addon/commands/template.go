package commands

import (
	"github.com/spf13/cobra"

	"github.com/testruction/cilium-addon/cmd/cilium-addon/handlers"
)

// Template returns the command rendering the release manifests offline.
func Template(a *app) *cobra.Command {
	var opts handlers.TemplateOptions

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Render the Cilium release manifests",
		Long: `Render the Cilium release manifests without installing them.

The chart is downloaded to the local chart cache and rendered with the
computed values. A Namespace manifest is prepended when createNamespace is
set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Template(cmd.Context(), a.env, opts)
		},
	}

	cmd.Flags().StringVar(&opts.KubeVersion, "kube-version", "", "Kubernetes version used for rendering (default: cluster.kubeVersion)")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Write to a file or s3:// URI instead of stdout")
	cmd.Flags().StringVar(&opts.ChartPath, "chart-path", "", "Render a local chart directory or archive instead of downloading the chart")

	return cmd
}
