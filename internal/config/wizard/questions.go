package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/huh"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/cilium"
)

// RegionOptions lists common AWS regions. Any region can be set in the file.
var RegionOptions = []huh.Option[string]{
	huh.NewOption("us-east-1 - N. Virginia", "us-east-1"),
	huh.NewOption("us-west-2 - Oregon", "us-west-2"),
	huh.NewOption("eu-west-1 - Ireland", "eu-west-1"),
	huh.NewOption("eu-central-1 - Frankfurt", "eu-central-1"),
	huh.NewOption("ap-southeast-1 - Singapore", "ap-southeast-1"),
}

// ExternalAddonOptions lists addons the Cilium addon can order itself after.
var ExternalAddonOptions = []huh.Option[string]{
	huh.NewOption("AWS Load Balancer Controller (required for the Hubble UI ALB)", addons.AWSLoadBalancerControllerAddOn),
	huh.NewOption("External Secrets", addons.ExternalSecretsAddOn),
}

// runClusterGroup prompts for the cluster name and region.
func runClusterGroup(ctx context.Context, result *Result) error {
	result.Region = "us-east-1"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster Name").
				Description("Name of the EKS cluster").
				Placeholder("my-cluster").
				Value(&result.ClusterName).
				Validate(validateClusterName),
			huh.NewSelect[string]().
				Title("Region").
				Options(RegionOptions...).
				Value(&result.Region),
		).Title("Cluster"),
	).RunWithContext(ctx)
}

// runChartGroup prompts for the release namespace and chart version.
func runChartGroup(ctx context.Context, result *Result) error {
	result.Namespace = cilium.DefaultNamespace
	result.Version = cilium.DefaultVersion

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Namespace").
				Value(&result.Namespace).
				Validate(validateNamespace),
			huh.NewInput().
				Title("Chart Version").
				Description("Version of the cilium chart").
				Value(&result.Version).
				Validate(validateVersion),
		).Title("Chart"),
	).RunWithContext(ctx)
}

// runExternalAddonsGroup prompts for addons already running in the cluster.
func runExternalAddonsGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Installed Addons").
				Description("Addons already deployed to the cluster").
				Options(ExternalAddonOptions...).
				Value(&result.ExternalAddons),
		).Title("External Addons"),
	).RunWithContext(ctx)
}

// runHubbleGroup asks whether the Hubble UI gets an ALB ingress.
func runHubbleGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Expose the Hubble UI through an ALB?").
				Description("Needs the AWS Load Balancer Controller").
				Value(&result.EnableALB),
		).Title("Hubble"),
	).RunWithContext(ctx)
}

// runCertificateGroup prompts for an optional ACM certificate.
func runCertificateGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Certificate ARN (Optional)").
				Description("ACM certificate for HTTPS. Leave empty for HTTP only.").
				Placeholder("arn:aws:acm:us-east-1:123456789012:certificate/...").
				Value(&result.CertificateARN).
				Validate(validateOptionalCertificateARN),
		).Title("Certificate"),
	).RunWithContext(ctx)
}

func validateClusterName(s string) error {
	if s == "" {
		return errClusterNameRequired
	}
	if len(validation.IsDNS1123Subdomain(s)) > 0 {
		return errClusterNameInvalid
	}
	return nil
}

func validateNamespace(s string) error {
	if msgs := validation.IsDNS1123Label(s); len(msgs) > 0 {
		return fmt.Errorf("invalid namespace: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func validateVersion(s string) error {
	if _, err := semver.NewVersion(s); err != nil {
		return errVersionInvalid
	}
	return nil
}

func validateOptionalCertificateARN(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if err := addons.ValidateCertificateARN(strings.TrimSpace(s)); err != nil {
		return errCertificateARN
	}
	return nil
}
