package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testruction/cilium-addon/internal/addons/helm"
	"github.com/testruction/cilium-addon/internal/platform/s3"
)

type fakeFetcher struct {
	objects map[string][]byte
	calls   []string
}

func (f *fakeFetcher) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	ref := "s3://" + bucket + "/" + key
	f.calls = append(f.calls, ref)
	data, ok := f.objects[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", s3.ErrObjectNotFound, ref)
	}
	return data, nil
}

func writeValuesFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestResolveValuesFiles_MergesInOrder(t *testing.T) {
	t.Parallel()
	first := writeValuesFile(t, "first.yaml", "tunnel: vxlan\nhubble:\n  relay:\n    enabled: false\n")
	fetcher := &fakeFetcher{objects: map[string][]byte{
		"s3://blueprints/cilium/second.yaml": []byte("hubble:\n  relay:\n    enabled: true\n  ui:\n    enabled: true\n"),
	}}

	values, err := ResolveValuesFiles(context.Background(), []string{first, "s3://blueprints/cilium/second.yaml"}, fetcher)
	require.NoError(t, err)

	assert.Equal(t, helm.Values{
		"tunnel": "vxlan",
		"hubble": map[string]any{
			"relay": map[string]any{"enabled": true},
			"ui":    map[string]any{"enabled": true},
		},
	}, values)
	assert.Equal(t, []string{"s3://blueprints/cilium/second.yaml"}, fetcher.calls)
}

func TestResolveValuesFiles_Empty(t *testing.T) {
	t.Parallel()
	values, err := ResolveValuesFiles(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestResolveValuesFiles_Errors(t *testing.T) {
	t.Parallel()
	invalid := writeValuesFile(t, "invalid.yaml", "tunnel: [\n")

	tests := []struct {
		name    string
		files   []string
		fetcher ObjectFetcher
		wantErr string
		wantIs  error
	}{
		{name: "missing local file", files: []string{filepath.Join(t.TempDir(), "nope.yaml")}, wantErr: "failed to read values file"},
		{name: "invalid yaml", files: []string{invalid}, wantErr: "failed to parse values file"},
		{name: "s3 without fetcher", files: []string{"s3://bucket/values.yaml"}, wantErr: "needs an s3 client"},
		{name: "s3 missing object", files: []string{"s3://bucket/values.yaml"}, fetcher: &fakeFetcher{}, wantIs: s3.ErrObjectNotFound},
		{name: "s3 malformed reference", files: []string{"s3://bucket"}, fetcher: &fakeFetcher{}, wantIs: s3.ErrInvalidURI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ResolveValuesFiles(context.Background(), tt.files, tt.fetcher)
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs), "got %v", err)
			}
		})
	}
}

func TestCiliumOptions_InlineValuesWin(t *testing.T) {
	t.Parallel()
	file := writeValuesFile(t, "base.yaml", "tunnel: vxlan\noperator:\n  replicas: 2\n")

	cfg := validConfig()
	cfg.Cilium.ValuesFiles = []string{file}
	cfg.Cilium.Values = helm.Values{"operator": helm.Values{"replicas": 1}}

	opts, err := cfg.CiliumOptions(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, helm.Values{
		"tunnel":   "vxlan",
		"operator": map[string]any{"replicas": 1},
	}, opts.Values)
	// The blueprint keeps its own inline values.
	assert.Equal(t, helm.Values{"operator": helm.Values{"replicas": 1}}, cfg.Cilium.Values)
}

func TestCiliumOptions_NoValuesFiles(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Cilium.Values = helm.Values{"tunnel": "disabled"}

	opts, err := cfg.CiliumOptions(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Cilium.Options, opts)
}

func TestNeedsObjectStore(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	assert.False(t, cfg.NeedsObjectStore())

	cfg.Cilium.ValuesFiles = []string{"local.yaml", "s3://bucket/values.yaml"}
	assert.True(t, cfg.NeedsObjectStore())
}
