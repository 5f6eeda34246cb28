package labels

// Label keys.
const (
	KeyManagedBy = "app.kubernetes.io/managed-by"
	KeyPartOf    = "app.kubernetes.io/part-of"
	KeyCluster   = "cilium-addon.io/cluster"
)

// ManagedBy is the value of KeyManagedBy.
const ManagedBy = "cilium-addon"

// LabelBuilder provides a fluent interface for building label sets.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a builder with the managed-by label set and, when
// clusterName is not empty, the cluster label.
func NewLabelBuilder(clusterName string) *LabelBuilder {
	lb := &LabelBuilder{labels: map[string]string{KeyManagedBy: ManagedBy}}
	if clusterName != "" {
		lb.labels[KeyCluster] = clusterName
	}
	return lb
}

// WithPartOf records the addon the object belongs to.
func (lb *LabelBuilder) WithPartOf(addon string) *LabelBuilder {
	if addon != "" {
		lb.labels[KeyPartOf] = addon
	}
	return lb
}

// Merge adds all labels from extra, overriding existing keys.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}
