package cilium_test

import (
	"errors"

	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/cilium"
	"github.com/testruction/cilium-addon/internal/addons/helm"
)

const certARN = "arn:aws:acm:us-east-1:123456789012:certificate/certX"

func annotationsOf(values helm.Values) map[string]any {
	got, ok := values.Lookup("hubble.ui.ingress.annotations")
	ExpectWithOffset(1, ok).To(BeTrue(), "annotations should be present")
	annotations, ok := got.(map[string]any)
	ExpectWithOffset(1, ok).To(BeTrue(), "annotations should be a map")
	return annotations
}

var _ = Describe("BuildOverlay", func() {
	var (
		albController *addons.AddonRef
		cluster       *addons.ClusterInfo
	)

	BeforeEach(func() {
		albController = &addons.AddonRef{Name: addons.AWSLoadBalancerControllerAddOn, Namespace: "kube-system"}
		cluster = addons.NewClusterInfo("blueprint", "us-east-1")
		cluster.RegisterResource("certX", addons.Certificate{ARN: certARN})
	})

	Context("when ALB is disabled", func() {
		It("returns an empty overlay", func() {
			overlay, err := cilium.BuildOverlay(false, nil, "", cluster)
			Expect(err).NotTo(HaveOccurred())
			Expect(overlay).To(BeEmpty())
		})

		It("ignores a scheduled load balancer controller", func() {
			overlay, err := cilium.BuildOverlay(false, albController, "", cluster)
			Expect(err).NotTo(HaveOccurred())
			Expect(overlay).To(BeEmpty())
		})

		It("rejects a certificate with a PreconditionError", func() {
			overlay, err := cilium.BuildOverlay(false, nil, "x", cluster)
			Expect(overlay).To(BeNil())

			var pre *addons.PreconditionError
			Expect(errors.As(err, &pre)).To(BeTrue())
			Expect(pre.Reason).To(ContainSubstring("only supported when ALB is enabled"))
		})
	})

	Context("when ALB is enabled", func() {
		It("requires the load balancer controller", func() {
			overlay, err := cilium.BuildOverlay(true, nil, "", cluster)
			Expect(overlay).To(BeNil())

			var missing *addons.MissingDependencyError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Dependency).To(Equal(addons.AWSLoadBalancerControllerAddOn))
			Expect(missing.Kind).To(Equal(addons.DependencyAddon))
		})

		It("builds the HTTP only ingress", func() {
			overlay, err := cilium.BuildOverlay(true, albController, "", cluster)
			Expect(err).NotTo(HaveOccurred())

			Expect(overlay).To(Equal(helm.Values{
				"hubble": map[string]any{
					"enabled": true,
					"ui": map[string]any{
						"enabled": true,
						"ingress": map[string]any{
							"enabled":   true,
							"className": "alb",
							"annotations": map[string]any{
								"alb.ingress.kubernetes.io/group.name":       "hubble",
								"alb.ingress.kubernetes.io/scheme":           "internet-facing",
								"alb.ingress.kubernetes.io/target-type":      "ip",
								"alb.ingress.kubernetes.io/listen-ports":     `[{"HTTP": 80}]`,
								"alb.ingress.kubernetes.io/healthcheck-path": "/health",
							},
						},
					},
				},
			}))
		})

		It("adds the HTTPS listener and certificate ARN for a resolved certificate", func() {
			overlay, err := cilium.BuildOverlay(true, albController, "certX", cluster)
			Expect(err).NotTo(HaveOccurred())

			annotations := annotationsOf(overlay)
			Expect(annotations).To(HaveKeyWithValue(cilium.AnnotationListenPorts, `[{"HTTP": 80},{"HTTPS":443}]`))
			Expect(annotations).To(HaveKeyWithValue(cilium.AnnotationCertificateARN, certARN))
			Expect(annotations).To(HaveKeyWithValue(cilium.AnnotationGroupName, "hubble"))
			Expect(annotations).To(HaveLen(6))
		})

		It("returns fresh annotation maps on every call", func() {
			first, err := cilium.BuildOverlay(true, albController, "certX", cluster)
			Expect(err).NotTo(HaveOccurred())
			second, err := cilium.BuildOverlay(true, albController, "", cluster)
			Expect(err).NotTo(HaveOccurred())

			Expect(annotationsOf(second)).NotTo(HaveKey(cilium.AnnotationCertificateARN))
			Expect(annotationsOf(first)).To(HaveKey(cilium.AnnotationCertificateARN))
		})
	})

	Context("when the certificate cannot be resolved", func() {
		It("keeps the HTTPS listener, omits the ARN and logs a warning", func() {
			var logged []string
			builder := cilium.OverlayBuilder{
				Logger: funcr.New(func(_, args string) { logged = append(logged, args) }, funcr.Options{}),
			}

			overlay, err := builder.Build(true, albController, "unknown", cluster)
			Expect(err).NotTo(HaveOccurred())

			annotations := annotationsOf(overlay)
			Expect(annotations).To(HaveKeyWithValue(cilium.AnnotationListenPorts, cilium.ListenPortsHTTPHTTPS))
			Expect(annotations).NotTo(HaveKey(cilium.AnnotationCertificateARN))
			Expect(logged).To(HaveLen(1))
			Expect(logged[0]).To(ContainSubstring("certificate not found"))
			Expect(logged[0]).To(ContainSubstring("unknown"))
		})

		It("fails in strict mode", func() {
			builder := cilium.OverlayBuilder{StrictCertificateLookup: true}

			_, err := builder.Build(true, albController, "unknown", cluster)

			var missing *addons.MissingDependencyError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Kind).To(Equal(addons.DependencyResource))
			Expect(missing.Dependency).To(Equal("unknown"))
		})

		It("treats a nil registry as an unresolved certificate", func() {
			overlay, err := cilium.BuildOverlay(true, albController, "certX", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(annotationsOf(overlay)).NotTo(HaveKey(cilium.AnnotationCertificateARN))
		})
	})
})
