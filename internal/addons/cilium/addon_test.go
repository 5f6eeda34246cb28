package cilium_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/cilium"
	"github.com/testruction/cilium-addon/internal/addons/helm"
	"github.com/testruction/cilium-addon/internal/util/labels"
)

type fakeInstaller struct {
	calls   int
	release helm.Release
	values  helm.Values
	err     error
}

func (f *fakeInstaller) Install(_ context.Context, rel helm.Release, values helm.Values) (*helm.InstallResult, error) {
	f.calls++
	f.release = rel
	f.values = values
	if f.err != nil {
		return nil, f.err
	}
	return &helm.InstallResult{Release: rel.Name, Namespace: rel.Namespace, Revision: 1, Status: "deployed"}, nil
}

var _ = Describe("Options", func() {
	It("has the documented defaults", func() {
		o := cilium.DefaultOptions()
		Expect(o.Name).To(Equal("cilium"))
		Expect(o.Namespace).To(Equal("kube-system"))
		Expect(o.Chart).To(Equal("cilium"))
		Expect(o.Version).To(Equal("1.13.4"))
		Expect(o.Release).To(Equal("blueprints-addon-cilium"))
		Expect(o.Repository).To(Equal("https://helm.cilium.io"))
		Expect(o.ShouldCreateNamespace()).To(BeTrue())
		Expect(o.EnableALB).To(BeFalse())
		Expect(o.Values).To(BeEmpty())
		Expect(o.Validate()).To(Succeed())
	})

	It("returns independent copies", func() {
		a := cilium.DefaultOptions()
		a.Values["tunnel"] = "vxlan"
		*a.CreateNamespace = false

		b := cilium.DefaultOptions()
		Expect(b.Values).To(BeEmpty())
		Expect(b.ShouldCreateNamespace()).To(BeTrue())
	})

	It("layers user options over the defaults", func() {
		user := cilium.Options{
			Version:         "1.14.2",
			CreateNamespace: ptr.To(false),
			EnableALB:       true,
			Values:          helm.Values{"tunnel": "vxlan"},
		}

		o := user.WithDefaults()
		Expect(o.Name).To(Equal("cilium"))
		Expect(o.Version).To(Equal("1.14.2"))
		Expect(o.ShouldCreateNamespace()).To(BeFalse())
		Expect(o.EnableALB).To(BeTrue())
		Expect(o.Values).To(Equal(helm.Values{"tunnel": "vxlan"}))

		o.Values["tunnel"] = "changed"
		Expect(user.Values["tunnel"]).To(Equal("vxlan"))
	})

	It("reports every validation problem", func() {
		o := cilium.Options{
			Name:       "Not_Valid",
			Namespace:  "",
			Release:    "blueprints-addon-cilium",
			Chart:      "cilium",
			Version:    "latest",
			Repository: "ftp://charts",
		}

		err := o.Validate()
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, cilium.ErrInvalidOptions)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(`name "Not_Valid"`))
		Expect(err.Error()).To(ContainSubstring(`namespace ""`))
		Expect(err.Error()).To(ContainSubstring(`version "latest"`))
		Expect(err.Error()).To(ContainSubstring("scheme must be http, https or oci"))
	})

	It("builds the helm release", func() {
		rel := cilium.Options{Repository: "oci://registry.example.com/charts"}.WithDefaults().HelmRelease()
		Expect(rel).To(Equal(helm.Release{
			Name:      "blueprints-addon-cilium",
			Namespace: "kube-system",
			Chart: helm.ChartSpec{
				Repository: "oci://registry.example.com/charts",
				Name:       "cilium",
				Version:    "1.13.4",
			},
			CreateNamespace: true,
		}))
	})
})

var _ = Describe("AddOn", func() {
	var cluster *addons.ClusterInfo

	BeforeEach(func() {
		cluster = addons.NewClusterInfo("blueprint", "us-east-1")
	})

	It("identifies itself", func() {
		a := cilium.New(cilium.Options{})
		Expect(a.Name()).To(Equal("cilium"))
		Expect(a.Ref()).To(Equal(addons.AddonRef{Name: "cilium", Namespace: "kube-system", Release: "blueprints-addon-cilium"}))
		Expect(a.Dependencies()).To(ConsistOf(addons.AWSLoadBalancerControllerAddOn, addons.ExternalSecretsAddOn))
	})

	It("computes the base values when ALB is disabled", func() {
		values, err := cilium.New(cilium.Options{}).Values(cluster, cluster)
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal(cilium.BaseValues()))
		Expect(values).NotTo(HaveKey("hubble"))
	})

	It("merges user values last", func() {
		a := cilium.New(cilium.Options{
			Values: helm.Values{
				"config": map[string]any{"eni": map[string]any{"enabled": false}},
				"extra":  "value",
			},
		})

		values, err := a.Values(cluster, cluster)
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal(helm.Values{
			"config": map[string]any{
				"eni":  map[string]any{"enabled": false},
				"ipam": map[string]any{"mode": "eni"},
			},
			"egressMasqueradeInterfaces": "eth0",
			"tunnel":                     "disabled",
			"extra":                      "value",
		}))
	})

	It("lets user values override the hubble overlay", func() {
		cluster.ScheduleAddon(addons.AddonRef{Name: addons.AWSLoadBalancerControllerAddOn})
		a := cilium.New(cilium.Options{
			EnableALB: true,
			Values: helm.Values{
				"hubble": map[string]any{"ui": map[string]any{"ingress": map[string]any{"className": "internal-alb"}}},
			},
		})

		values, err := a.Values(cluster, cluster)
		Expect(err).NotTo(HaveOccurred())

		className, _ := values.Lookup("hubble.ui.ingress.className")
		Expect(className).To(Equal("internal-alb"))
		enabled, _ := values.Lookup("hubble.ui.ingress.enabled")
		Expect(enabled).To(Equal(true))
		scheme, _ := values.Lookup("hubble.ui.ingress.annotations")
		Expect(scheme).To(HaveKeyWithValue(cilium.AnnotationScheme, "internet-facing"))
	})

	It("fails when ALB is enabled without the controller", func() {
		_, err := cilium.New(cilium.Options{EnableALB: true}).Values(cluster, cluster)
		Expect(addons.IsMissingDependency(err)).To(BeTrue())
	})

	It("fails when a certificate is set without ALB", func() {
		_, err := cilium.New(cilium.Options{CertificateResourceName: "certX"}).Values(cluster, cluster)
		Expect(addons.IsPrecondition(err)).To(BeTrue())
	})

	Describe("Deploy", func() {
		It("installs the chart with the final values", func() {
			installer := &fakeInstaller{}
			cluster.ScheduleAddon(addons.AddonRef{Name: addons.AWSLoadBalancerControllerAddOn})
			cluster.RegisterResource("certX", addons.Certificate{ARN: certARN})

			a := cilium.New(cilium.Options{EnableALB: true, CertificateResourceName: "certX"})
			res, err := a.Deploy(context.Background(), cluster, installer)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal("deployed"))

			Expect(installer.calls).To(Equal(1))
			Expect(installer.release.Name).To(Equal("blueprints-addon-cilium"))
			Expect(installer.release.Chart.String()).To(Equal("https://helm.cilium.io/cilium@1.13.4"))
			Expect(installer.release.NamespaceLabels).To(Equal(map[string]string{
				labels.KeyManagedBy: labels.ManagedBy,
				labels.KeyCluster:   "blueprint",
				labels.KeyPartOf:    "cilium",
			}))
			arn, ok := installer.values.Lookup("hubble.ui.ingress.annotations")
			Expect(ok).To(BeTrue())
			Expect(arn).To(HaveKeyWithValue(cilium.AnnotationCertificateARN, certARN))
		})

		It("does not call the installer when values cannot be computed", func() {
			installer := &fakeInstaller{}
			_, err := cilium.New(cilium.Options{EnableALB: true}).Deploy(context.Background(), cluster, installer)
			Expect(addons.IsMissingDependency(err)).To(BeTrue())
			Expect(installer.calls).To(BeZero())
		})

		It("reports the missing controller when no cluster is given", func() {
			installer := &fakeInstaller{}
			_, err := cilium.New(cilium.Options{EnableALB: true}).Deploy(context.Background(), nil, installer)

			var missing *addons.MissingDependencyError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Dependency).To(Equal(addons.AWSLoadBalancerControllerAddOn))
			Expect(installer.calls).To(BeZero())
		})

		It("installs without a cluster when ALB is disabled", func() {
			installer := &fakeInstaller{}
			_, err := cilium.New(cilium.Options{}).Deploy(context.Background(), nil, installer)
			Expect(err).NotTo(HaveOccurred())
			Expect(installer.calls).To(Equal(1))
			Expect(installer.release.NamespaceLabels).To(BeNil())
		})

		It("does not call the installer for invalid options", func() {
			installer := &fakeInstaller{}
			_, err := cilium.New(cilium.Options{Version: "not-semver"}).Deploy(context.Background(), cluster, installer)
			Expect(errors.Is(err, cilium.ErrInvalidOptions)).To(BeTrue())
			Expect(installer.calls).To(BeZero())
		})

		It("wraps installer failures", func() {
			boom := errors.New("boom")
			installer := &fakeInstaller{err: boom}
			_, err := cilium.New(cilium.Options{}).Deploy(context.Background(), cluster, installer)
			Expect(err).To(MatchError(boom))
			Expect(err.Error()).To(ContainSubstring("failed to install"))
		})

		It("deploys after its dependencies through addons.Deploy", func() {
			installer := &fakeInstaller{}
			controller := &stubAddon{name: addons.AWSLoadBalancerControllerAddOn}
			a := cilium.New(cilium.Options{EnableALB: true})

			results, err := addons.Deploy(context.Background(), cluster, installer, []addons.Addon{a, controller})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].Addon).To(Equal(addons.AWSLoadBalancerControllerAddOn))
			Expect(results[1].Addon).To(Equal("cilium"))
			Expect(installer.values).To(HaveKey("hubble"))
		})
	})
})

type stubAddon struct {
	name string
}

func (s *stubAddon) Name() string           { return s.name }
func (s *stubAddon) Dependencies() []string { return nil }
func (s *stubAddon) Ref() addons.AddonRef   { return addons.AddonRef{Name: s.name} }
func (s *stubAddon) Deploy(context.Context, *addons.ClusterInfo, helm.Installer) (*helm.InstallResult, error) {
	return &helm.InstallResult{Release: s.name}, nil
}
