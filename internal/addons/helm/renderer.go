package helm

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/engine"
)

// DefaultKubeVersion is the Kubernetes version templates are rendered against
// when none is given.
const DefaultKubeVersion = "v1.31.0"

// Renderer renders Helm charts with provided values.
type Renderer struct {
	releaseName string
	namespace   string
	kubeVersion string
}

// NewRenderer creates a renderer for the given release. An empty kubeVersion
// selects DefaultKubeVersion.
func NewRenderer(releaseName, namespace, kubeVersion string) *Renderer {
	if kubeVersion == "" {
		kubeVersion = DefaultKubeVersion
	}
	return &Renderer{
		releaseName: releaseName,
		namespace:   namespace,
		kubeVersion: kubeVersion,
	}
}

// Render uses the helm engine to render the chart with values layered over
// the chart defaults. Documents are joined in template name order.
func (r *Renderer) Render(ch *chart.Chart, values Values) ([]byte, error) {
	chartDefaults := Values(ch.Values)
	mergedValues := DeepMerge(chartDefaults, values)

	releaseOptions := chartutil.ReleaseOptions{
		Name:      r.releaseName,
		Namespace: r.namespace,
		IsInstall: true,
	}

	capabilities, err := capabilitiesFor(r.kubeVersion)
	if err != nil {
		return nil, err
	}

	valuesToRender, err := chartutil.ToRenderValues(ch, mergedValues.ToMap(), releaseOptions, capabilities)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare values: %w", err)
	}

	eng := engine.Engine{
		Strict:   false,
		LintMode: false,
	}

	rendered, err := eng.Render(ch, valuesToRender)
	if err != nil {
		return nil, fmt.Errorf("failed to render templates: %w", err)
	}

	names := make([]string, 0, len(rendered))
	for name := range rendered {
		names = append(names, name)
	}
	sort.Strings(names)

	var combined bytes.Buffer
	for _, name := range names {
		if filepath.Base(name) == "NOTES.txt" {
			continue
		}

		trimmed := strings.TrimSpace(rendered[name])
		if trimmed == "" {
			continue
		}

		if combined.Len() > 0 {
			combined.WriteString("---\n")
		}
		combined.WriteString(trimmed)
		combined.WriteString("\n")
	}

	return combined.Bytes(), nil
}

// capabilitiesFor returns the default Helm capabilities pinned to kubeVersion.
func capabilitiesFor(kubeVersion string) (*chartutil.Capabilities, error) {
	v, err := semver.NewVersion(kubeVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid kubernetes version %q: %w", kubeVersion, err)
	}

	capabilities := chartutil.DefaultCapabilities.Copy()
	capabilities.KubeVersion.Version = "v" + v.String()
	capabilities.KubeVersion.Major = strconv.FormatUint(v.Major(), 10)
	capabilities.KubeVersion.Minor = strconv.FormatUint(v.Minor(), 10)
	return capabilities, nil
}

// NamespaceManifest generates a Namespace YAML manifest string.
// Labels are written in sorted key order.
func NamespaceManifest(name string, labels map[string]string) string {
	manifest := fmt.Sprintf("apiVersion: v1\nkind: Namespace\nmetadata:\n  name: %s\n", name)
	if len(labels) > 0 {
		keys := make([]string, 0, len(labels))
		for k := range labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		manifest += "  labels:\n"
		for _, k := range keys {
			manifest += fmt.Sprintf("    %s: %q\n", k, labels[k])
		}
	}
	return manifest
}

func prependDocument(doc string, manifests []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(doc)
	if len(manifests) > 0 {
		buf.WriteString("---\n")
		buf.Write(manifests)
	}
	return buf.Bytes()
}
