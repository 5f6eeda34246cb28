package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/platform/s3"
)

// ErrInvalidConfig is wrapped by every blueprint parse or validation error.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks the blueprint and reports every problem found.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Cluster.Name == "" {
		result = multierror.Append(result, fmt.Errorf("%w: cluster.name is required", ErrInvalidConfig))
	} else {
		for _, msg := range validation.IsDNS1123Subdomain(c.Cluster.Name) {
			result = multierror.Append(result, fmt.Errorf("%w: cluster.name %q: %s", ErrInvalidConfig, c.Cluster.Name, msg))
		}
	}

	seenAddons := make(map[string]bool, len(c.ExternalAddons))
	for i, ref := range c.ExternalAddons {
		if ref.Name == "" {
			result = multierror.Append(result, fmt.Errorf("%w: externalAddons[%d].name is required", ErrInvalidConfig, i))
			continue
		}
		if seenAddons[ref.Name] {
			result = multierror.Append(result, fmt.Errorf("%w: externalAddons[%d]: duplicate addon %q", ErrInvalidConfig, i, ref.Name))
		}
		seenAddons[ref.Name] = true
	}

	seenCerts := make(map[string]bool, len(c.Certificates))
	for i, cert := range c.Certificates {
		if cert.Name == "" {
			result = multierror.Append(result, fmt.Errorf("%w: certificates[%d].name is required", ErrInvalidConfig, i))
		} else if seenCerts[cert.Name] {
			result = multierror.Append(result, fmt.Errorf("%w: certificates[%d]: duplicate certificate %q", ErrInvalidConfig, i, cert.Name))
		}
		seenCerts[cert.Name] = true

		if err := addons.ValidateCertificateARN(cert.ARN); err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: certificates[%d]: %v", ErrInvalidConfig, i, err))
		}
	}

	if err := c.Cilium.Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("%w: cilium: %v", ErrInvalidConfig, err))
	}
	for i, ref := range c.Cilium.ValuesFiles {
		if ref == "" {
			result = multierror.Append(result, fmt.Errorf("%w: cilium.valuesFiles[%d] is empty", ErrInvalidConfig, i))
			continue
		}
		if s3.IsURI(ref) {
			if _, _, err := s3.ParseURI(ref); err != nil {
				result = multierror.Append(result, fmt.Errorf("%w: cilium.valuesFiles[%d]: %v", ErrInvalidConfig, i, err))
			}
		}
	}

	return result.ErrorOrNil()
}
