package k8sclient

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/util/async"
	"github.com/testruction/cilium-addon/internal/util/retry"
)

// KnownAddon maps an addon name to the Deployment that indicates it is installed.
type KnownAddon struct {
	Name       string
	Namespace  string
	Deployment string
	Release    string
}

// DefaultKnownAddons lists the external addons the Cilium addon depends on,
// at the locations their charts install them by default.
func DefaultKnownAddons() []KnownAddon {
	return []KnownAddon{
		{
			Name:       addons.AWSLoadBalancerControllerAddOn,
			Namespace:  "kube-system",
			Deployment: "aws-load-balancer-controller",
			Release:    "blueprints-addon-aws-load-balancer-controller",
		},
		{
			Name:       addons.ExternalSecretsAddOn,
			Namespace:  "external-secrets",
			Deployment: "blueprints-addon-external-secrets",
			Release:    "blueprints-addon-external-secrets",
		},
	}
}

// DeploymentProbe detects installed addons by looking up their Deployments.
type DeploymentProbe struct {
	client client.Client
	logger logr.Logger
	retry  []retry.Option
}

// NewDeploymentProbe creates a probe on top of an existing client. Failed
// lookups are retried with retryOpts; authorization errors are not retried.
func NewDeploymentProbe(c client.Client, logger logr.Logger, retryOpts ...retry.Option) *DeploymentProbe {
	return &DeploymentProbe{client: c, logger: logger, retry: retryOpts}
}

// NewDeploymentProbeForConfig creates a controller-runtime client for cfg
// and wraps it in a DeploymentProbe.
func NewDeploymentProbeForConfig(cfg *rest.Config, logger logr.Logger) (*DeploymentProbe, error) {
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("failed to build scheme: %w", err)
	}

	c, err := client.New(cfg, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return NewDeploymentProbe(c, logger), nil
}

// Installed reports whether the Deployment of known exists.
func (p *DeploymentProbe) Installed(ctx context.Context, known KnownAddon) (bool, error) {
	key := types.NamespacedName{Namespace: known.Namespace, Name: known.Deployment}
	found := false
	err := retry.Do(ctx, func(ctx context.Context) error {
		var deployment appsv1.Deployment
		err := p.client.Get(ctx, key, &deployment)
		switch {
		case err == nil:
			found = true
			return nil
		case apierrors.IsNotFound(err):
			return nil
		case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
			return retry.Permanent(err)
		default:
			p.logger.V(1).Info("deployment lookup failed", "deployment", key.String(), "error", err.Error())
			return err
		}
	}, p.retry...)
	if err != nil {
		return false, fmt.Errorf("failed to get deployment %s: %w", key, err)
	}
	return found, nil
}

// ScheduleInstalled looks up the Deployments of all known addons in
// parallel, schedules those that exist on cluster and returns the scheduled
// references in input order. Nothing is scheduled when a lookup fails.
func (p *DeploymentProbe) ScheduleInstalled(ctx context.Context, cluster *addons.ClusterInfo, known []KnownAddon) ([]addons.AddonRef, error) {
	installed := make([]bool, len(known))
	tasks := make([]async.Task, len(known))
	for i, k := range known {
		tasks[i] = async.Task{
			Name: k.Name,
			Func: func(ctx context.Context) error {
				ok, err := p.Installed(ctx, k)
				installed[i] = ok
				return err
			},
		}
	}
	if err := async.RunParallel(ctx, tasks); err != nil {
		return nil, err
	}

	var found []addons.AddonRef
	for i, k := range known {
		if !installed[i] {
			p.logger.V(1).Info("addon not installed", "addon", k.Name, "namespace", k.Namespace)
			continue
		}

		ref := addons.AddonRef{Name: k.Name, Namespace: k.Namespace, Release: k.Release}
		cluster.ScheduleAddon(ref)
		found = append(found, ref)
		p.logger.Info("found installed addon", "addon", k.Name, "namespace", k.Namespace)
	}
	return found, nil
}
