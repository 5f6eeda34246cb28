package addons

import (
	"context"

	"github.com/testruction/cilium-addon/internal/addons/helm"
)

// Names of addons other addons may depend on.
const (
	CiliumAddOn                    = "cilium"
	AWSLoadBalancerControllerAddOn = "aws-load-balancer-controller"
	ExternalSecretsAddOn           = "external-secrets"
)

// Addon represents a chart based addon that can be deployed into a cluster.
type Addon interface {
	// Name returns the unique name of the addon.
	Name() string

	// Ref describes the release the addon will create once deployed.
	Ref() AddonRef

	// Dependencies returns addon names that must be deployed before this one
	// when they are part of the same run. Hard requirements are checked by the
	// addon itself during Deploy.
	Dependencies() []string

	// Deploy computes the final values and hands them to the installer.
	Deploy(ctx context.Context, cluster *ClusterInfo, installer helm.Installer) (*helm.InstallResult, error)
}

// AddonRef identifies a scheduled or deployed addon.
type AddonRef struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	Release   string `json:"release,omitempty"`
}

// DependencyRegistry reports whether a named addon has been scheduled.
type DependencyRegistry interface {
	ScheduledAddon(name string) (*AddonRef, bool)
}

// ResourceHandle is a resolved cluster resource such as an imported certificate.
type ResourceHandle interface {
	Identifier() string
}

// ResourceRegistry resolves symbolic resource names to handles.
// Absence is a valid outcome.
type ResourceRegistry interface {
	LookupResource(name string) (ResourceHandle, bool)
}

// ResourceProvider produces a resource for the cluster before addons deploy.
type ResourceProvider interface {
	Provide(ctx context.Context, cluster *ClusterInfo) (ResourceHandle, error)
}
