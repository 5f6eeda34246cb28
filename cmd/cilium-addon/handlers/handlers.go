// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"k8s.io/client-go/rest"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/helm"
	"github.com/testruction/cilium-addon/internal/addons/k8sclient"
	"github.com/testruction/cilium-addon/internal/config"
	"github.com/testruction/cilium-addon/internal/config/wizard"
	"github.com/testruction/cilium-addon/internal/platform/s3"
	"github.com/testruction/cilium-addon/internal/ui/tui"
)

// Env carries what every handler needs from the command layer.
type Env struct {
	Settings config.Settings
	Logger   logr.Logger
	Out      io.Writer
}

// objectStore reads values files from and writes output to S3.
type objectStore interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// addonProbe schedules addons found running in the cluster.
type addonProbe interface {
	ScheduleInstalled(ctx context.Context, cluster *addons.ClusterInfo, known []k8sclient.KnownAddon) ([]addons.AddonRef, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads and validates the blueprint.
	loadConfigFile = config.LoadFile

	// newObjectStore creates the S3 client used for s3:// references.
	newObjectStore = func(ctx context.Context, opts s3.Options) (objectStore, error) {
		return s3.NewClient(ctx, opts)
	}

	// newChartLoader returns the loader used to fetch charts.
	newChartLoader = func() helm.ChartLoader {
		return helm.DefaultChartLoader(nil)
	}

	// newRESTClientGetter returns cluster access for the given namespace.
	newRESTClientGetter = func(settings config.Settings, namespace string) *helm.RESTClientGetter {
		return helm.NewPathRESTClientGetter(settings.Kubeconfig, settings.KubeContext, namespace)
	}

	// newReleaseInstaller creates the installer talking to the cluster.
	newReleaseInstaller = func(getter *helm.RESTClientGetter, namespace string, opts ...helm.ClientOption) (helm.Installer, error) {
		return helm.NewClient(getter, namespace, opts...)
	}

	// newAddonProbe creates the probe discovering installed addons.
	newAddonProbe = func(cfg *rest.Config, logger logr.Logger) (addonProbe, error) {
		return k8sclient.NewDeploymentProbeForConfig(cfg, logger)
	}

	// newInstallID returns the correlation id of an install run.
	newInstallID = uuid.NewString

	// runInstallTUI shows install progress.
	runInstallTUI = tui.RunInstallTUI

	// stdoutIsTerminal reports whether progress can be drawn.
	stdoutIsTerminal = func() bool {
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the interactive blueprint wizard.
	runWizard = wizard.RunWizard

	// writeBlueprint writes the blueprint to a file.
	writeBlueprint = wizard.WriteConfig
)

// loadBlueprint loads the blueprint named in the settings.
func loadBlueprint(env Env) (*config.Config, error) {
	path := env.Settings.ConfigPath
	if path == "" {
		path = config.DefaultConfigFilename
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		if !fileExists(path) {
			return nil, fmt.Errorf("no config file found at %s, run 'cilium-addon init' to create one: %w", path, err)
		}
		return nil, err
	}
	return cfg, nil
}

// objectStoreFor returns an S3 client when the blueprint or the output
// refers to s3://, and nil otherwise.
func objectStoreFor(ctx context.Context, env Env, cfg *config.Config, output string) (objectStore, error) {
	if !cfg.NeedsObjectStore() && !s3.IsURI(output) {
		return nil, nil
	}
	store, err := newObjectStore(ctx, s3.Options{
		Region:       cfg.Cluster.Region,
		Endpoint:     env.Settings.S3Endpoint,
		UsePathStyle: env.Settings.S3Endpoint != "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}
	return store, nil
}

// kubeVersionFor picks the Kubernetes version used for offline rendering.
func kubeVersionFor(flag string, cfg *config.Config) string {
	switch {
	case flag != "":
		return flag
	case cfg.Cluster.KubeVersion != "":
		return cfg.Cluster.KubeVersion
	default:
		return helm.DefaultKubeVersion
	}
}

// chartLoaderFor loads the chart from chartPath when set and downloads it
// otherwise.
func chartLoaderFor(chartPath string) helm.ChartLoader {
	if chartPath != "" {
		return helm.PathChartLoader(chartPath)
	}
	return newChartLoader()
}
