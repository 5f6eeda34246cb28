package cilium

import (
	"github.com/go-logr/logr"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/helm"
)

// ALB ingress annotations set on the Hubble UI ingress.
const (
	AnnotationGroupName       = "alb.ingress.kubernetes.io/group.name"
	AnnotationScheme          = "alb.ingress.kubernetes.io/scheme"
	AnnotationTargetType      = "alb.ingress.kubernetes.io/target-type"
	AnnotationListenPorts     = "alb.ingress.kubernetes.io/listen-ports"
	AnnotationHealthcheckPath = "alb.ingress.kubernetes.io/healthcheck-path"
	AnnotationCertificateARN  = "alb.ingress.kubernetes.io/certificate-arn"
)

// Listener configurations for the Hubble UI load balancer.
const (
	ListenPortsHTTP      = `[{"HTTP": 80}]`
	ListenPortsHTTPHTTPS = `[{"HTTP": 80},{"HTTPS":443}]`
)

// HubbleKey is the values key the overlay is nested under.
const HubbleKey = "hubble"

// presetAnnotations returns the annotations of a plain HTTP Hubble ingress.
func presetAnnotations() map[string]any {
	return map[string]any{
		AnnotationGroupName:       "hubble",
		AnnotationScheme:          "internet-facing",
		AnnotationTargetType:      "ip",
		AnnotationListenPorts:     ListenPortsHTTP,
		AnnotationHealthcheckPath: "/health",
	}
}

// OverlayBuilder builds the Hubble UI overlay.
type OverlayBuilder struct {
	// Logger receives a warning when a certificate cannot be resolved.
	Logger logr.Logger

	// StrictCertificateLookup turns an unresolved certificate into a
	// MissingDependencyError.
	StrictCertificateLookup bool
}

// BuildOverlay builds the Hubble overlay with a discarding logger and
// lenient certificate lookup.
func BuildOverlay(enableALB bool, dependency *addons.AddonRef, certificateName string, resources addons.ResourceRegistry) (helm.Values, error) {
	return OverlayBuilder{Logger: logr.Discard()}.Build(enableALB, dependency, certificateName, resources)
}

// Build returns the overlay for the given inputs.
//
// With enableALB false the overlay is empty, and a certificate name is a
// PreconditionError. With enableALB true the load balancer controller must be
// scheduled (dependency non-nil), otherwise a MissingDependencyError is
// returned. A certificate name switches the listener to HTTP and HTTPS and
// adds the certificate ARN when the resource registry resolves it.
func (b OverlayBuilder) Build(enableALB bool, dependency *addons.AddonRef, certificateName string, resources addons.ResourceRegistry) (helm.Values, error) {
	if !enableALB {
		if certificateName != "" {
			return nil, &addons.PreconditionError{
				Addon:  DefaultName,
				Reason: "certificate is only supported when ALB is enabled",
			}
		}
		return helm.Values{}, nil
	}

	if dependency == nil {
		return nil, &addons.MissingDependencyError{
			Addon:      DefaultName,
			Dependency: addons.AWSLoadBalancerControllerAddOn,
			Kind:       addons.DependencyAddon,
		}
	}

	annotations := presetAnnotations()
	if certificateName != "" {
		annotations[AnnotationListenPorts] = ListenPortsHTTPHTTPS

		handle, ok := lookup(resources, certificateName)
		switch {
		case ok:
			annotations[AnnotationCertificateARN] = handle.Identifier()
		case b.StrictCertificateLookup:
			return nil, &addons.MissingDependencyError{
				Addon:      DefaultName,
				Dependency: certificateName,
				Kind:       addons.DependencyResource,
			}
		default:
			b.Logger.Info("certificate not found, hubble ingress will listen on HTTPS without a certificate",
				"certificate", certificateName)
		}
	}

	return helm.Values{
		HubbleKey: map[string]any{
			"enabled": true,
			"ui": map[string]any{
				"enabled": true,
				"ingress": map[string]any{
					"enabled":     true,
					"className":   "alb",
					"annotations": annotations,
				},
			},
		},
	}, nil
}

func lookup(resources addons.ResourceRegistry, name string) (addons.ResourceHandle, bool) {
	if resources == nil {
		return nil, false
	}
	handle, ok := resources.LookupResource(name)
	if !ok || handle == nil {
		return nil, false
	}
	return handle, true
}
