package helm

import (
	"context"
	"fmt"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/cli"
)

// Installer installs a chart release with a final set of values.
type Installer interface {
	Install(ctx context.Context, rel Release, values Values) (*InstallResult, error)
}

// InstallResult reports what an installer did.
type InstallResult struct {
	Release   string
	Namespace string
	Revision  int
	Status    string
	// Manifest holds the rendered manifests of the release.
	Manifest string
}

// ChartLoader resolves a chart spec to a loaded chart.
type ChartLoader func(ctx context.Context, spec ChartSpec) (*chart.Chart, error)

// DefaultChartLoader downloads charts through the local chart cache.
func DefaultChartLoader(settings *cli.EnvSettings) ChartLoader {
	return func(ctx context.Context, spec ChartSpec) (*chart.Chart, error) {
		return DownloadChart(ctx, spec, settings)
	}
}

// PathChartLoader loads a vendored chart from a directory or .tgz archive.
// The requested spec only names the chart in errors.
func PathChartLoader(path string) ChartLoader {
	return func(_ context.Context, spec ChartSpec) (*chart.Chart, error) {
		ch, err := loadChartFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", spec.Name, err)
		}
		return ch, nil
	}
}

// TemplateInstaller renders releases without talking to a cluster.
// It is the installer behind the template command and dry runs.
type TemplateInstaller struct {
	loadChart   ChartLoader
	kubeVersion string
}

// NewTemplateInstaller creates a TemplateInstaller. A nil loader selects
// DefaultChartLoader with default Helm settings.
func NewTemplateInstaller(loader ChartLoader, kubeVersion string) *TemplateInstaller {
	if loader == nil {
		loader = DefaultChartLoader(nil)
	}
	return &TemplateInstaller{
		loadChart:   loader,
		kubeVersion: kubeVersion,
	}
}

// Install renders the release. The returned status is always "rendered".
func (t *TemplateInstaller) Install(ctx context.Context, rel Release, values Values) (*InstallResult, error) {
	if err := rel.Validate(); err != nil {
		return nil, err
	}

	ch, err := t.loadChart(ctx, rel.Chart)
	if err != nil {
		return nil, err
	}

	manifests, err := NewRenderer(rel.Name, rel.Namespace, t.kubeVersion).Render(ch, values)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", rel.Chart, err)
	}

	if rel.CreateNamespace {
		manifests = prependDocument(NamespaceManifest(rel.Namespace, rel.NamespaceLabels), manifests)
	}

	return &InstallResult{
		Release:   rel.Name,
		Namespace: rel.Namespace,
		Revision:  0,
		Status:    "rendered",
		Manifest:  string(manifests),
	}, nil
}
