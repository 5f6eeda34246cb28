package handlers

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/cilium"
	"github.com/testruction/cilium-addon/internal/addons/helm"
	"github.com/testruction/cilium-addon/internal/addons/k8sclient"
	"github.com/testruction/cilium-addon/internal/metrics"
)

// MetricsJob is the Pushgateway job name.
const MetricsJob = "cilium-addon"

// InstallOptions configures the install command.
type InstallOptions struct {
	// SkipProbe disables discovery of installed addons; only the
	// blueprint's externalAddons are scheduled.
	SkipProbe bool
	// Wait waits for the release resources to become ready.
	Wait bool
	// Progress draws the install progress view when stdout is a terminal.
	Progress bool
	// KubeVersion is used for dry runs.
	KubeVersion string
	// ChartPath installs a vendored chart instead of downloading it.
	ChartPath string
}

// Install installs or upgrades the Cilium release in the cluster.
//
// Addons already running in the cluster are discovered through their
// Deployments and scheduled before the Cilium values are computed. With
// dry run enabled nothing is sent to the cluster and the rendered
// manifests are printed instead.
func Install(ctx context.Context, env Env, opts InstallOptions) error {
	cfg, err := loadBlueprint(env)
	if err != nil {
		return err
	}

	installID := newInstallID()
	log := env.Logger.WithValues("installId", installID, "cluster", cfg.Cluster.Name)

	store, err := objectStoreFor(ctx, env, cfg, "")
	if err != nil {
		return err
	}
	ciliumOpts, err := cfg.CiliumOptions(ctx, store)
	if err != nil {
		return err
	}
	addon := cilium.New(ciliumOpts, cilium.WithLogger(log))
	namespace := addon.Options().Namespace

	cluster := cfg.NewClusterInfo()
	getter := newRESTClientGetter(env.Settings, namespace)

	dryRun := env.Settings.DryRun
	if !opts.SkipProbe && !dryRun {
		if err := scheduleInstalledAddons(ctx, log, getter, cluster); err != nil {
			return err
		}
	}

	var installer helm.Installer
	if dryRun {
		installer = helm.NewTemplateInstaller(chartLoaderFor(opts.ChartPath), kubeVersionFor(opts.KubeVersion, cfg))
	} else {
		installer, err = newReleaseInstaller(getter, namespace,
			helm.WithLogger(log),
			helm.WithTimeout(env.Settings.Timeout),
			helm.WithWait(opts.Wait),
			helm.WithChartLoader(chartLoaderFor(opts.ChartPath)),
		)
		if err != nil {
			return err
		}
	}

	recorder := metrics.NewRecorder(cfg.Cluster.Name)
	var results []addons.DeployResult
	deploy := func(ctx context.Context, observer addons.Observer) error {
		deployOpts := []addons.DeployOption{
			addons.WithDeployLogger(log),
			addons.WithObserver(recorder),
		}
		if observer != nil {
			deployOpts = append(deployOpts, addons.WithObserver(observer))
		}
		var deployErr error
		results, deployErr = addons.Deploy(ctx, cluster, installer, []addons.Addon{addon}, deployOpts...)
		return deployErr
	}

	if opts.Progress && !dryRun && stdoutIsTerminal() {
		err = runInstallTUI(ctx, deploy, cfg.Cluster.Name, cfg.Cluster.Region, []string{addon.Name()})
	} else {
		err = deploy(ctx, nil)
	}

	if url := env.Settings.Pushgateway; url != "" && !dryRun {
		if pushErr := recorder.Push(ctx, url, MetricsJob); pushErr != nil {
			log.Error(pushErr, "failed to push metrics")
		}
	}

	if err != nil {
		return err
	}

	if dryRun {
		for _, r := range results {
			if r.Result != nil {
				if _, err := io.WriteString(env.Out, r.Result.Manifest); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
		}
		return nil
	}

	printInstallSummary(env.Out, installID, results)
	return nil
}

func scheduleInstalledAddons(ctx context.Context, log logr.Logger, getter *helm.RESTClientGetter, cluster *addons.ClusterInfo) error {
	restConfig, err := getter.ToRESTConfig()
	if err != nil {
		return fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	probe, err := newAddonProbe(restConfig, log)
	if err != nil {
		return err
	}
	if _, err := probe.ScheduleInstalled(ctx, cluster, k8sclient.DefaultKnownAddons()); err != nil {
		return fmt.Errorf("failed to discover installed addons: %w", err)
	}
	return nil
}

func printInstallSummary(w io.Writer, installID string, results []addons.DeployResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Install complete")
	fmt.Fprintln(w, "----------------")
	fmt.Fprintf(w, "  Install ID: %s\n", installID)
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		fmt.Fprintf(w, "  %-12s %s/%s revision %d (%s) in %s\n",
			r.Addon, r.Result.Namespace, r.Result.Release, r.Result.Revision, r.Result.Status, r.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(w)
}
