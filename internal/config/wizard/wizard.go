package wizard

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// Result holds the answers from the interactive wizard.
type Result struct {
	// Cluster
	ClusterName string
	Region      string

	// Chart
	Namespace string
	Version   string

	// Addons already running in the cluster.
	ExternalAddons []string

	// Hubble UI
	EnableALB       bool
	CertificateName string
	CertificateARN  string
}

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive reports whether the wizard can prompt the user.
func IsInteractive() bool {
	return stdinIsTerminal()
}

// RunWizard runs the interactive blueprint wizard.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context) (*Result, error) {
	if !IsInteractive() {
		return nil, errNotInteractive
	}

	result := &Result{}

	if err := runClusterGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	if err := runChartGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}

	if err := runExternalAddonsGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("external addons: %w", err)
	}

	if err := runHubbleGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("hubble: %w", err)
	}

	if result.EnableALB {
		if err := runCertificateGroup(ctx, result); err != nil {
			return nil, fmt.Errorf("certificate: %w", err)
		}
	}

	return result, nil
}
