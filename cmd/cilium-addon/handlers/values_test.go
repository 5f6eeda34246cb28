package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/cilium"
)

func TestValues_YAML(t *testing.T) {
	saveAndRestoreFactories(t)
	env, out := testEnv(t, albBlueprint)

	require.NoError(t, Values(context.Background(), env, ValuesOptions{Format: FormatYAML}))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))

	assert.Equal(t, "disabled", got["tunnel"])
	assert.Equal(t, "eth0", got["egressMasqueradeInterfaces"])
	assert.Equal(t, map[string]any{"replicas": 1}, got["operator"])

	hubble := got["hubble"].(map[string]any)
	assert.Equal(t, true, hubble["enabled"])
	ingress := hubble["ui"].(map[string]any)["ingress"].(map[string]any)
	assert.Equal(t, "alb", ingress["className"])
	annotations := ingress["annotations"].(map[string]any)
	assert.Equal(t, testCertificateARN, annotations[cilium.AnnotationCertificateARN])
	assert.Equal(t, cilium.ListenPortsHTTPHTTPS, annotations[cilium.AnnotationListenPorts])
}

func TestValues_Deterministic(t *testing.T) {
	saveAndRestoreFactories(t)
	env, out := testEnv(t, albBlueprint)

	require.NoError(t, Values(context.Background(), env, ValuesOptions{Format: FormatYAML}))
	first := out.String()
	out.Reset()
	require.NoError(t, Values(context.Background(), env, ValuesOptions{Format: FormatYAML}))

	assert.Equal(t, first, out.String())
}

func TestValues_JSONQuery(t *testing.T) {
	saveAndRestoreFactories(t)
	env, out := testEnv(t, albBlueprint)

	err := Values(context.Background(), env, ValuesOptions{
		Format: FormatJSON,
		Query:  ".hubble.ui.ingress.className",
	})
	require.NoError(t, err)
	assert.Equal(t, "\"alb\"\n", out.String())
}

func TestValues_QueryMultipleResults(t *testing.T) {
	saveAndRestoreFactories(t)
	env, out := testEnv(t, plainBlueprint)

	err := Values(context.Background(), env, ValuesOptions{
		Format: FormatJSON,
		Query:  ".tunnel, .config.ipam.mode",
	})
	require.NoError(t, err)

	var got []string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, []string{"vxlan", "eni"}, got)
}

func TestValues_InvalidQuery(t *testing.T) {
	saveAndRestoreFactories(t)
	env, _ := testEnv(t, plainBlueprint)

	err := Values(context.Background(), env, ValuesOptions{Format: FormatYAML, Query: ".tunnel |"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid query")
}

func TestValues_Diff(t *testing.T) {
	saveAndRestoreFactories(t)
	env, out := testEnv(t, plainBlueprint)

	require.NoError(t, Values(context.Background(), env, ValuesOptions{Format: FormatJSON, Diff: true}))

	var patch []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &patch))
	assert.Equal(t, []map[string]any{
		{"op": "replace", "path": "/tunnel", "value": "vxlan"},
	}, patch)
}

func TestValues_DiffWithOverlay(t *testing.T) {
	saveAndRestoreFactories(t)
	env, out := testEnv(t, albBlueprint)

	require.NoError(t, Values(context.Background(), env, ValuesOptions{Format: FormatJSON, Diff: true}))

	var patch []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &patch))
	paths := make([]string, 0, len(patch))
	for _, op := range patch {
		assert.Equal(t, "add", op["op"])
		paths = append(paths, op["path"].(string))
	}
	assert.Equal(t, []string{"/hubble", "/operator"}, paths)
}

func TestValues_MissingDependency(t *testing.T) {
	saveAndRestoreFactories(t)
	env, _ := testEnv(t, "cluster:\n  name: demo\ncilium:\n  enableAlb: true\n")

	err := Values(context.Background(), env, ValuesOptions{Format: FormatYAML})
	require.Error(t, err)

	var missing *addons.MissingDependencyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, addons.AWSLoadBalancerControllerAddOn, missing.Dependency)
}

func TestValues_CertificateWithoutALB(t *testing.T) {
	saveAndRestoreFactories(t)
	env, _ := testEnv(t, `
cluster:
  name: demo
certificates:
  - name: hubble-cert
    arn: `+testCertificateARN+`
cilium:
  certificateResourceName: hubble-cert
`)

	err := Values(context.Background(), env, ValuesOptions{Format: FormatYAML})
	assert.True(t, addons.IsPrecondition(err), "got %v", err)
}

func TestValues_UnsupportedFormat(t *testing.T) {
	saveAndRestoreFactories(t)
	env, _ := testEnv(t, plainBlueprint)

	err := Values(context.Background(), env, ValuesOptions{Format: "toml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestValues_MissingBlueprint(t *testing.T) {
	saveAndRestoreFactories(t)
	env, _ := testEnv(t, plainBlueprint)
	env.Settings.ConfigPath = filepath.Join(t.TempDir(), "missing.yaml")

	err := Values(context.Background(), env, ValuesOptions{Format: FormatYAML})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cilium-addon init")
}

func TestValues_OutputFile(t *testing.T) {
	saveAndRestoreFactories(t)
	env, out := testEnv(t, plainBlueprint)
	outputPath := filepath.Join(t.TempDir(), "values.yaml")

	require.NoError(t, Values(context.Background(), env, ValuesOptions{Format: FormatYAML, Output: outputPath}))

	assert.Empty(t, out.String())
	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tunnel: vxlan")
}

func TestValues_S3ValuesFilesAndOutput(t *testing.T) {
	saveAndRestoreFactories(t)
	store, calls := useFakeStore(t)
	store.objects["s3://blueprints/demo/base.yaml"] = []byte("tunnel: geneve\nipv6:\n  enabled: true\n")

	env, _ := testEnv(t, `
cluster:
  name: demo
  region: eu-west-1
cilium:
  valuesFiles:
    - s3://blueprints/demo/base.yaml
  values:
    tunnel: vxlan
`)
	env.Settings.S3Endpoint = "http://minio:9000"

	err := Values(context.Background(), env, ValuesOptions{
		Format: FormatYAML,
		Output: "s3://blueprints/demo/rendered.yaml",
	})
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	assert.Equal(t, "eu-west-1", (*calls)[0].Region)
	assert.Equal(t, "http://minio:9000", (*calls)[0].Endpoint)
	assert.True(t, (*calls)[0].UsePathStyle)

	rendered := string(store.objects["s3://blueprints/demo/rendered.yaml"])
	assert.Contains(t, rendered, "tunnel: vxlan")
	assert.Contains(t, rendered, "ipv6:\n  enabled: true")
}

func TestValues_NoObjectStoreForLocalFiles(t *testing.T) {
	saveAndRestoreFactories(t)
	_, calls := useFakeStore(t)
	env, _ := testEnv(t, plainBlueprint)

	require.NoError(t, Values(context.Background(), env, ValuesOptions{Format: FormatYAML}))
	assert.Empty(t, *calls)
}
