package helm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
)

// Common errors
var (
	ErrChartNotFound   = errors.New("chart not found")
	ErrChartLoadFailed = errors.New("chart load failed")
	ErrInvalidRelease  = errors.New("invalid release")
)

// ChartSpec identifies a chart in a Helm repository.
type ChartSpec struct {
	Repository string
	Name       string
	Version    string
}

// String returns the chart reference in repo/name@version form.
func (s ChartSpec) String() string {
	return fmt.Sprintf("%s/%s@%s", s.Repository, s.Name, s.Version)
}

// Release describes where and under which name a chart is installed.
type Release struct {
	Name            string
	Namespace       string
	Chart           ChartSpec
	CreateNamespace bool
	// NamespaceLabels label the namespace when it is rendered offline.
	NamespaceLabels map[string]string
}

// Validate checks that the release carries everything an installer needs.
func (r Release) Validate() error {
	switch {
	case r.Name == "":
		return fmt.Errorf("%w: release name is empty", ErrInvalidRelease)
	case r.Namespace == "":
		return fmt.Errorf("%w: namespace is empty", ErrInvalidRelease)
	case r.Chart.Name == "":
		return fmt.Errorf("%w: chart name is empty", ErrInvalidRelease)
	case r.Chart.Repository == "":
		return fmt.Errorf("%w: chart repository is empty", ErrInvalidRelease)
	}
	return nil
}

// GetCachePath returns the directory used to cache downloaded charts.
// It honours XDG_CACHE_HOME and falls back to the OS cache directory.
func GetCachePath() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cilium-addon", "charts")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "cilium-addon", "charts")
	}
	return filepath.Join(os.TempDir(), "cilium-addon", "charts")
}

// DownloadChart locates the chart described by spec, downloading it into the
// chart cache when it is not already present, and loads it.
func DownloadChart(ctx context.Context, spec ChartSpec, settings *cli.EnvSettings) (*chart.Chart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if settings == nil {
		settings = cli.New()
	}
	settings.RepositoryCache = GetCachePath()

	opts := action.ChartPathOptions{
		RepoURL: spec.Repository,
		Version: spec.Version,
	}

	chartPath, err := opts.LocateChart(spec.Name, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrChartNotFound, spec, err)
	}

	return loadChartFromPath(chartPath)
}

// loadChartFromPath loads a packaged (.tgz) or unpacked chart from disk.
func loadChartFromPath(path string) (*chart.Chart, error) {
	ch, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load chart from %s: %v", ErrChartLoadFailed, path, err)
	}
	return ch, nil
}
