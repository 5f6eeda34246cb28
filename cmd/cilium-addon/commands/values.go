package commands

import (
	"github.com/spf13/cobra"

	"github.com/testruction/cilium-addon/cmd/cilium-addon/handlers"
)

// Values returns the command printing the computed chart values.
func Values(a *app) *cobra.Command {
	var opts handlers.ValuesOptions

	cmd := &cobra.Command{
		Use:   "values",
		Short: "Print the computed Cilium chart values",
		Long: `Print the Cilium chart values computed from the blueprint.

Values are built from the ENI base values, the Hubble overlay and the
blueprint's values files and inline values, merged in that order. The
cluster is not contacted: addons listed under externalAddons count as
installed.

Examples:
  # Print the values as YAML
  cilium-addon values

  # Show only the Hubble section as JSON
  cilium-addon values -o json --query .hubble

  # Show what the blueprint changes over the base values
  cilium-addon values --diff

  # Store the values in S3
  cilium-addon values --output s3://blueprints/demo/cilium-values.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Values(cmd.Context(), a.env, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "o", handlers.FormatYAML, "Output format: yaml or json")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "jq expression applied to the output")
	cmd.Flags().BoolVar(&opts.Diff, "diff", false, "Print a JSON patch from the base values instead")
	cmd.Flags().StringVar(&opts.Output, "output", "", "Write to a file or s3:// URI instead of stdout")

	return cmd
}
