package cilium

import "github.com/testruction/cilium-addon/internal/addons/helm"

// BaseValues returns the recommended values for Cilium on EKS: ENI IPAM with
// masquerading through eth0 and tunnelling disabled.
func BaseValues() helm.Values {
	return helm.Values{
		"config": map[string]any{
			"eni": map[string]any{
				"enabled": true,
			},
			"ipam": map[string]any{
				"mode": "eni",
			},
		},
		"egressMasqueradeInterfaces": "eth0",
		"tunnel":                     "disabled",
	}
}
