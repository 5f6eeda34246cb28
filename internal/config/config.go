package config

import (
	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/cilium"
)

// DefaultConfigFilename is the default blueprint filename.
const DefaultConfigFilename = "cilium-addon.yaml"

// Config is the blueprint file.
type Config struct {
	Cluster ClusterConfig `json:"cluster"`

	// ExternalAddons are addons that run in the cluster but are not deployed
	// by this tool, e.g. aws-load-balancer-controller.
	ExternalAddons []addons.AddonRef `json:"externalAddons,omitempty"`

	// Certificates are imported into the cluster resource registry under
	// their name.
	Certificates []CertificateConfig `json:"certificates,omitempty"`

	Cilium CiliumConfig `json:"cilium"`
}

// ClusterConfig identifies the target cluster.
type ClusterConfig struct {
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`

	// KubeVersion is used when rendering templates offline.
	KubeVersion string `json:"kubeVersion,omitempty"`
}

// CertificateConfig imports an existing ACM certificate.
type CertificateConfig struct {
	Name   string `json:"name"`
	ARN    string `json:"arn"`
	Domain string `json:"domain,omitempty"`
}

// CiliumConfig holds the addon options plus values files.
type CiliumConfig struct {
	cilium.Options `json:",inline"`

	// ValuesFiles are merged in order before the inline values.
	ValuesFiles []string `json:"valuesFiles,omitempty"`
}

// ApplyDefaults fills unset addon options from the addon defaults.
func (c *Config) ApplyDefaults() {
	c.Cilium.Options = c.Cilium.Options.WithDefaults()
}

// NewClusterInfo builds the cluster registries described by the blueprint:
// external addons are scheduled and certificates get an import provider.
func (c *Config) NewClusterInfo() *addons.ClusterInfo {
	cluster := addons.NewClusterInfo(c.Cluster.Name, c.Cluster.Region)
	for _, ref := range c.ExternalAddons {
		cluster.ScheduleAddon(ref)
	}
	for _, cert := range c.Certificates {
		cluster.AddResourceProvider(cert.Name, addons.ImportCertificateProvider{ARN: cert.ARN, Domain: cert.Domain})
	}
	return cluster
}
