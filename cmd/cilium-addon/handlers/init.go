package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/testruction/cilium-addon/internal/config"
	"github.com/testruction/cilium-addon/internal/config/wizard"
)

// Init runs the blueprint wizard and writes the result to outputPath.
func Init(ctx context.Context, env Env, outputPath string, force bool) error {
	if fileExists(outputPath) {
		if !force {
			return fmt.Errorf("%s already exists, use --force to overwrite it", outputPath)
		}
		fmt.Fprintf(env.Out, "Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome(env.Out)

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := wizard.BuildConfig(result)

	if err := writeBlueprint(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(env.Out, outputPath, cfg)
	return nil
}

func printWelcome(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "cilium-addon - Cilium on EKS")
	fmt.Fprintln(w, "============================")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This wizard creates a blueprint for the Cilium addon.")
	fmt.Fprintln(w, "Unanswered settings keep the addon defaults.")
	fmt.Fprintln(w)
}

func printInitSuccess(w io.Writer, outputPath string, cfg *config.Config) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Blueprint saved!")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  File: %s\n", outputPath)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w, "-------")
	fmt.Fprintf(w, "  Cluster:   %s\n", cfg.Cluster.Name)
	if cfg.Cluster.Region != "" {
		fmt.Fprintf(w, "  Region:    %s\n", cfg.Cluster.Region)
	}
	for _, ref := range cfg.ExternalAddons {
		fmt.Fprintf(w, "  Installed: %s\n", ref.Name)
	}
	if cfg.Cilium.EnableALB {
		fmt.Fprintln(w, "  Hubble UI: ALB ingress")
	}
	if cfg.Cilium.CertificateResourceName != "" {
		fmt.Fprintf(w, "  HTTPS:     certificate %s\n", cfg.Cilium.CertificateResourceName)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Next Steps")
	fmt.Fprintln(w, "----------")
	fmt.Fprintf(w, "  1. Review %s if needed\n", outputPath)
	fmt.Fprintln(w, "  2. Preview the chart values:")
	fmt.Fprintf(w, "     cilium-addon values -c %s\n", outputPath)
	fmt.Fprintln(w, "  3. Install Cilium:")
	fmt.Fprintf(w, "     cilium-addon install -c %s\n", outputPath)
	fmt.Fprintln(w)
}
