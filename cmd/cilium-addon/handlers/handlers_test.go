package handlers

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	"helm.sh/helm/v3/pkg/chart"
	"k8s.io/client-go/rest"

	"github.com/testruction/cilium-addon/internal/addons"
	"github.com/testruction/cilium-addon/internal/addons/helm"
	"github.com/testruction/cilium-addon/internal/addons/k8sclient"
	"github.com/testruction/cilium-addon/internal/config"
	"github.com/testruction/cilium-addon/internal/platform/s3"
)

const testCertificateARN = "arn:aws:acm:us-east-1:123456789012:certificate/0f3c2a1e-6f7d-4b2a-9f1e-1a2b3c4d5e6f"

const albBlueprint = `
cluster:
  name: demo
  region: us-east-1
  kubeVersion: v1.30.0
externalAddons:
  - name: aws-load-balancer-controller
    namespace: kube-system
certificates:
  - name: hubble-cert
    arn: ` + testCertificateARN + `
cilium:
  enableAlb: true
  certificateResourceName: hubble-cert
  values:
    operator:
      replicas: 1
`

const plainBlueprint = `
cluster:
  name: demo
  region: us-east-1
cilium:
  values:
    tunnel: vxlan
`

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: demo
  cluster:
    server: https://127.0.0.1:6443
contexts:
- name: demo
  context:
    cluster: demo
    user: demo
current-context: demo
users:
- name: demo
  user:
    token: test-token
`

func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadConfigFile := loadConfigFile
	origNewObjectStore := newObjectStore
	origNewChartLoader := newChartLoader
	origNewRESTClientGetter := newRESTClientGetter
	origNewReleaseInstaller := newReleaseInstaller
	origNewAddonProbe := newAddonProbe
	origNewInstallID := newInstallID
	origRunInstallTUI := runInstallTUI
	origStdoutIsTerminal := stdoutIsTerminal
	origFileExists := fileExists
	origRunWizard := runWizard
	origWriteBlueprint := writeBlueprint

	t.Cleanup(func() {
		loadConfigFile = origLoadConfigFile
		newObjectStore = origNewObjectStore
		newChartLoader = origNewChartLoader
		newRESTClientGetter = origNewRESTClientGetter
		newReleaseInstaller = origNewReleaseInstaller
		newAddonProbe = origNewAddonProbe
		newInstallID = origNewInstallID
		runInstallTUI = origRunInstallTUI
		stdoutIsTerminal = origStdoutIsTerminal
		fileExists = origFileExists
		runWizard = origRunWizard
		writeBlueprint = origWriteBlueprint
	})

	stdoutIsTerminal = func() bool { return false }
	newInstallID = func() string { return "00000000-0000-4000-8000-000000000001" }
}

// testEnv writes blueprint to a temp dir and returns an Env reading it.
func testEnv(t *testing.T, blueprint string) (Env, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(blueprint), 0600))

	out := &bytes.Buffer{}
	return Env{
		Settings: config.Settings{
			ConfigPath: path,
			LogLevel:   "info",
			Timeout:    config.DefaultTimeout,
		},
		Logger: logr.Discard(),
		Out:    out,
	}, out
}

// fakeStore is an in-memory objectStore.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects["s3://"+bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("%w: s3://%s/%s", s3.ErrObjectNotFound, bucket, key)
	}
	return data, nil
}

func (s *fakeStore) PutObject(_ context.Context, bucket, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects["s3://"+bucket+"/"+key] = append([]byte(nil), data...)
	return nil
}

func useFakeStore(t *testing.T) (*fakeStore, *[]s3.Options) {
	t.Helper()
	store := newFakeStore()
	var calls []s3.Options
	newObjectStore = func(_ context.Context, opts s3.Options) (objectStore, error) {
		calls = append(calls, opts)
		return store, nil
	}
	return store, &calls
}

// testChart is a chart rendering a ConfigMap with a few computed values.
func testChart() *chart.Chart {
	return &chart.Chart{
		Metadata: &chart.Metadata{
			APIVersion: chart.APIVersionV2,
			Name:       "cilium",
			Version:    "1.13.4",
		},
		Values: map[string]any{"tunnel": "vxlan"},
		Templates: []*chart.File{
			{
				Name: "templates/configmap.yaml",
				Data: []byte(`apiVersion: v1
kind: ConfigMap
metadata:
  name: cilium-config
  namespace: {{ .Release.Namespace }}
data:
  tunnel: {{ .Values.tunnel | quote }}
  ipam: {{ .Values.config.ipam.mode | quote }}
{{- with .Values.hubble }}
  hubble: {{ .enabled | quote }}
{{- end }}
`),
			},
		},
	}
}

func useTestChart(t *testing.T) *[]helm.ChartSpec {
	t.Helper()
	var requested []helm.ChartSpec
	newChartLoader = func() helm.ChartLoader {
		return func(_ context.Context, spec helm.ChartSpec) (*chart.Chart, error) {
			requested = append(requested, spec)
			return testChart(), nil
		}
	}
	return &requested
}

// recordingInstaller records install calls.
type recordingInstaller struct {
	releases []helm.Release
	values   []helm.Values
	err      error
}

func (r *recordingInstaller) Install(_ context.Context, rel helm.Release, values helm.Values) (*helm.InstallResult, error) {
	r.releases = append(r.releases, rel)
	r.values = append(r.values, values)
	if r.err != nil {
		return nil, r.err
	}
	return &helm.InstallResult{
		Release:   rel.Name,
		Namespace: rel.Namespace,
		Revision:  len(r.releases),
		Status:    "deployed",
	}, nil
}

// fakeProbe schedules a fixed set of addons.
type fakeProbe struct {
	found []k8sclient.KnownAddon
	err   error
	calls int
}

func (p *fakeProbe) ScheduleInstalled(_ context.Context, cluster *addons.ClusterInfo, _ []k8sclient.KnownAddon) ([]addons.AddonRef, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	refs := make([]addons.AddonRef, 0, len(p.found))
	for _, k := range p.found {
		ref := addons.AddonRef{Name: k.Name, Namespace: k.Namespace, Release: k.Release}
		cluster.ScheduleAddon(ref)
		refs = append(refs, ref)
	}
	return refs, nil
}

func useClusterFakes(t *testing.T, installer *recordingInstaller, probe *fakeProbe) {
	t.Helper()
	newRESTClientGetter = func(_ config.Settings, namespace string) *helm.RESTClientGetter {
		return helm.NewInMemoryRESTClientGetter([]byte(testKubeconfig), namespace)
	}
	newReleaseInstaller = func(_ *helm.RESTClientGetter, _ string, _ ...helm.ClientOption) (helm.Installer, error) {
		return installer, nil
	}
	newAddonProbe = func(cfg *rest.Config, _ logr.Logger) (addonProbe, error) {
		if !strings.HasPrefix(cfg.Host, "https://127.0.0.1") {
			return nil, fmt.Errorf("unexpected host %s", cfg.Host)
		}
		return probe, nil
	}
}
