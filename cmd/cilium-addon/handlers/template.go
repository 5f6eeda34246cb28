package handlers

import (
	"context"
	"fmt"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/cilium"
	"github.com/testruction/cilium-addon/internal/addons/helm"
)

// TemplateOptions configures the template command.
type TemplateOptions struct {
	// KubeVersion overrides the blueprint's cluster.kubeVersion.
	KubeVersion string
	// Output is "" for stdout, a file path or an s3:// URI.
	Output string
	// ChartPath renders a vendored chart instead of downloading it.
	ChartPath string
}

// Template renders the Cilium release manifests offline.
func Template(ctx context.Context, env Env, opts TemplateOptions) error {
	cfg, err := loadBlueprint(env)
	if err != nil {
		return err
	}

	store, err := objectStoreFor(ctx, env, cfg, opts.Output)
	if err != nil {
		return err
	}

	ciliumOpts, err := cfg.CiliumOptions(ctx, store)
	if err != nil {
		return err
	}

	addon := cilium.New(ciliumOpts, cilium.WithLogger(env.Logger))
	installer := helm.NewTemplateInstaller(chartLoaderFor(opts.ChartPath), kubeVersionFor(opts.KubeVersion, cfg))

	results, err := addons.Deploy(ctx, cfg.NewClusterInfo(), installer, []addons.Addon{addon},
		addons.WithDeployLogger(env.Logger))
	if err != nil {
		return err
	}
	if len(results) == 0 || results[0].Result == nil {
		return fmt.Errorf("no manifests rendered for %s", addon.Name())
	}

	return writeOutput(ctx, env, store, opts.Output, []byte(results[0].Result.Manifest))
}
