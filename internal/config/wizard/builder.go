package wizard

import (
	"strings"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/cilium"
	"github.com/testruction/cilium-addon/internal/addons/k8sclient"
	"github.com/testruction/cilium-addon/internal/config"
)

// HubbleCertificateName is the resource name given to the certificate
// entered in the wizard.
const HubbleCertificateName = "hubble-ui-certificate"

// BuildConfig creates a blueprint from the wizard result.
func BuildConfig(result *Result) *config.Config {
	cfg := &config.Config{
		Cluster: config.ClusterConfig{
			Name:   result.ClusterName,
			Region: result.Region,
		},
	}

	known := make(map[string]k8sclient.KnownAddon)
	for _, k := range k8sclient.DefaultKnownAddons() {
		known[k.Name] = k
	}
	for _, name := range result.ExternalAddons {
		ref := addons.AddonRef{Name: name}
		if k, ok := known[name]; ok {
			ref.Namespace = k.Namespace
			ref.Release = k.Release
		}
		cfg.ExternalAddons = append(cfg.ExternalAddons, ref)
	}

	opts := cilium.Options{
		EnableALB: result.EnableALB,
	}
	// Only write values that differ from the addon defaults.
	if result.Namespace != "" && result.Namespace != cilium.DefaultNamespace {
		opts.Namespace = result.Namespace
	}
	if result.Version != "" && result.Version != cilium.DefaultVersion {
		opts.Version = result.Version
	}

	if arn := strings.TrimSpace(result.CertificateARN); result.EnableALB && arn != "" {
		name := result.CertificateName
		if name == "" {
			name = HubbleCertificateName
		}
		cfg.Certificates = []config.CertificateConfig{{Name: name, ARN: arn}}
		opts.CertificateResourceName = name
	}

	cfg.Cilium = config.CiliumConfig{Options: opts}
	return cfg
}
