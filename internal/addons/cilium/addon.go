package cilium

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/helm"
	"github.com/testruction/cilium-addon/internal/util/labels"
)

// AddOn implements the Cilium addon.
type AddOn struct {
	options Options
	logger  logr.Logger
}

var _ addons.Addon = (*AddOn)(nil)

// Option configures an AddOn.
type Option func(*AddOn)

// WithLogger sets the addon logger.
func WithLogger(logger logr.Logger) Option {
	return func(a *AddOn) { a.logger = logger }
}

// New creates the addon from user options layered over DefaultOptions.
func New(options Options, opts ...Option) *AddOn {
	a := &AddOn{
		options: options.WithDefaults(),
		logger:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithValues("addon", a.options.Name)
	return a
}

// Name returns the addon name.
func (a *AddOn) Name() string {
	return a.options.Name
}

// Options returns a copy of the effective options.
func (a *AddOn) Options() Options {
	return a.options.WithDefaults()
}

// Ref returns the release reference the addon schedules.
func (a *AddOn) Ref() addons.AddonRef {
	return addons.AddonRef{
		Name:      a.options.Name,
		Namespace: a.options.Namespace,
		Release:   a.options.Release,
	}
}

// Dependencies orders Cilium after the load balancer controller and
// external secrets when they are part of the same run.
func (a *AddOn) Dependencies() []string {
	return []string{
		addons.AWSLoadBalancerControllerAddOn,
		addons.ExternalSecretsAddOn,
	}
}

// Values computes the final chart values. The load balancer controller is
// looked up in deps up front and the result is passed to the overlay.
func (a *AddOn) Values(deps addons.DependencyRegistry, resources addons.ResourceRegistry) (helm.Values, error) {
	var albController *addons.AddonRef
	if a.options.EnableALB && deps != nil {
		albController, _ = deps.ScheduledAddon(addons.AWSLoadBalancerControllerAddOn)
	}

	builder := OverlayBuilder{
		Logger:                  a.logger,
		StrictCertificateLookup: a.options.StrictCertificateLookup,
	}
	overlay, err := builder.Build(a.options.EnableALB, albController, a.options.CertificateResourceName, resources)
	if err != nil {
		return nil, err
	}

	return helm.MergeAll(BaseValues(), overlay, a.options.Values), nil
}

// Deploy validates the options, computes the values and installs the chart.
func (a *AddOn) Deploy(ctx context.Context, cluster *addons.ClusterInfo, installer helm.Installer) (*helm.InstallResult, error) {
	if err := a.options.Validate(); err != nil {
		return nil, err
	}

	// A nil *ClusterInfo must reach Values as nil interfaces.
	var (
		deps      addons.DependencyRegistry
		resources addons.ResourceRegistry
	)
	if cluster != nil {
		deps, resources = cluster, cluster
	}
	values, err := a.Values(deps, resources)
	if err != nil {
		return nil, err
	}

	rel := a.options.HelmRelease()
	if rel.CreateNamespace && cluster != nil {
		rel.NamespaceLabels = labels.NewLabelBuilder(cluster.Name).WithPartOf(a.Name()).Build()
	}
	a.logger.Info("installing chart", "release", rel.Name, "namespace", rel.Namespace, "chart", rel.Chart.String())

	res, err := installer.Install(ctx, rel, values)
	if err != nil {
		return nil, fmt.Errorf("failed to install %s: %w", rel.Chart, err)
	}
	return res, nil
}
