package cilium

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-multierror"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/utils/ptr"

	"github.com/testruction/cilium-addon/internal/addons/helm"
)

// Defaults for the Cilium addon.
const (
	DefaultName       = "cilium"
	DefaultNamespace  = "kube-system"
	DefaultChart      = "cilium"
	DefaultVersion    = "1.13.4"
	DefaultRelease    = "blueprints-addon-cilium"
	DefaultRepository = "https://helm.cilium.io"
)

// ErrInvalidOptions is wrapped by every Options validation failure.
var ErrInvalidOptions = errors.New("invalid cilium options")

// Options are the user facing settings of the Cilium addon.
// Zero values are replaced by the defaults in WithDefaults.
type Options struct {
	Name       string `json:"name,omitempty"`
	Namespace  string `json:"namespace,omitempty"`
	Chart      string `json:"chart,omitempty"`
	Version    string `json:"version,omitempty"`
	Release    string `json:"release,omitempty"`
	Repository string `json:"repository,omitempty"`

	// CreateNamespace defaults to true when unset.
	CreateNamespace *bool `json:"createNamespace,omitempty"`

	// EnableALB exposes the Hubble UI through an ALB ingress.
	EnableALB bool `json:"enableAlb,omitempty"`

	// CertificateResourceName names a certificate in the cluster resource
	// registry. Only valid together with EnableALB.
	CertificateResourceName string `json:"certificateResourceName,omitempty"`

	// StrictCertificateLookup fails the deployment when the certificate
	// cannot be resolved instead of omitting the certificate annotation.
	StrictCertificateLookup bool `json:"strictCertificateLookup,omitempty"`

	// Values are merged over the computed values.
	Values helm.Values `json:"values,omitempty"`
}

// DefaultOptions returns a fresh copy of the default options.
func DefaultOptions() Options {
	return Options{
		Name:            DefaultName,
		Namespace:       DefaultNamespace,
		Chart:           DefaultChart,
		Version:         DefaultVersion,
		Release:         DefaultRelease,
		Repository:      DefaultRepository,
		CreateNamespace: ptr.To(true),
		EnableALB:       false,
		Values:          helm.Values{},
	}
}

// WithDefaults returns o with every unset field taken from DefaultOptions.
// o itself is not modified and the returned Values is a copy.
func (o Options) WithDefaults() Options {
	out := DefaultOptions()

	if o.Name != "" {
		out.Name = o.Name
	}
	if o.Namespace != "" {
		out.Namespace = o.Namespace
	}
	if o.Chart != "" {
		out.Chart = o.Chart
	}
	if o.Version != "" {
		out.Version = o.Version
	}
	if o.Release != "" {
		out.Release = o.Release
	}
	if o.Repository != "" {
		out.Repository = o.Repository
	}
	if o.CreateNamespace != nil {
		out.CreateNamespace = ptr.To(*o.CreateNamespace)
	}
	out.EnableALB = o.EnableALB
	out.CertificateResourceName = o.CertificateResourceName
	out.StrictCertificateLookup = o.StrictCertificateLookup
	if o.Values != nil {
		out.Values = o.Values.DeepCopy()
	}

	return out
}

// ShouldCreateNamespace reports whether the release namespace is created.
func (o Options) ShouldCreateNamespace() bool {
	return o.CreateNamespace == nil || *o.CreateNamespace
}

// Validate checks the options and reports every problem found.
func (o Options) Validate() error {
	var result *multierror.Error

	for _, msg := range validation.IsDNS1123Label(o.Name) {
		result = multierror.Append(result, fmt.Errorf("%w: name %q: %s", ErrInvalidOptions, o.Name, msg))
	}
	for _, msg := range validation.IsDNS1123Label(o.Namespace) {
		result = multierror.Append(result, fmt.Errorf("%w: namespace %q: %s", ErrInvalidOptions, o.Namespace, msg))
	}
	for _, msg := range validation.IsDNS1123Subdomain(o.Release) {
		result = multierror.Append(result, fmt.Errorf("%w: release %q: %s", ErrInvalidOptions, o.Release, msg))
	}
	if len(o.Release) > 53 {
		result = multierror.Append(result, fmt.Errorf("%w: release %q: must be no more than 53 characters", ErrInvalidOptions, o.Release))
	}
	if o.Chart == "" {
		result = multierror.Append(result, fmt.Errorf("%w: chart must not be empty", ErrInvalidOptions))
	}
	if _, err := semver.NewVersion(o.Version); err != nil {
		result = multierror.Append(result, fmt.Errorf("%w: version %q: %v", ErrInvalidOptions, o.Version, err))
	}
	if err := validateRepository(o.Repository); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func validateRepository(repository string) error {
	u, err := url.Parse(repository)
	if err != nil {
		return fmt.Errorf("%w: repository %q: %v", ErrInvalidOptions, repository, err)
	}
	switch u.Scheme {
	case "http", "https", "oci":
	default:
		return fmt.Errorf("%w: repository %q: scheme must be http, https or oci", ErrInvalidOptions, repository)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: repository %q: missing host", ErrInvalidOptions, repository)
	}
	return nil
}

// ChartSpec returns the chart the options point at.
func (o Options) ChartSpec() helm.ChartSpec {
	return helm.GetChartSpec(DefaultName, helm.ChartOverride{
		Repository: o.Repository,
		Chart:      o.Chart,
		Version:    o.Version,
	})
}

// HelmRelease returns the release the addon installs.
func (o Options) HelmRelease() helm.Release {
	return helm.Release{
		Name:            o.Release,
		Namespace:       o.Namespace,
		Chart:           o.ChartSpec(),
		CreateNamespace: o.ShouldCreateNamespace(),
	}
}
