package config

import (
	"context"
	"fmt"
	"os"

	"github.com/testruction/cilium-addon/internal/addons/cilium"
	"github.com/testruction/cilium-addon/internal/addons/helm"
	"github.com/testruction/cilium-addon/internal/platform/s3"
)

// ObjectFetcher reads objects from an object store.
type ObjectFetcher interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// ResolveValuesFiles reads every values file and merges them in order.
// s3:// references are read through fetcher, which may be nil when no
// reference needs it.
func ResolveValuesFiles(ctx context.Context, files []string, fetcher ObjectFetcher) (helm.Values, error) {
	layers := make([]helm.Values, 0, len(files))
	for _, ref := range files {
		data, err := readValuesFile(ctx, ref, fetcher)
		if err != nil {
			return nil, err
		}
		layer, err := helm.FromYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse values file %s: %w", ref, err)
		}
		layers = append(layers, layer)
	}
	return helm.MergeAll(layers...), nil
}

func readValuesFile(ctx context.Context, ref string, fetcher ObjectFetcher) ([]byte, error) {
	if !s3.IsURI(ref) {
		// #nosec G304
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read values file: %w", err)
		}
		return data, nil
	}

	bucket, key, err := s3.ParseURI(ref)
	if err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, fmt.Errorf("values file %s needs an s3 client", ref)
	}
	data, err := fetcher.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch values file: %w", err)
	}
	return data, nil
}

// NeedsObjectStore reports whether any values file is an s3:// reference.
func (c *Config) NeedsObjectStore() bool {
	for _, ref := range c.Cilium.ValuesFiles {
		if s3.IsURI(ref) {
			return true
		}
	}
	return false
}

// CiliumOptions returns the addon options with the values files merged
// beneath the inline values.
func (c *Config) CiliumOptions(ctx context.Context, fetcher ObjectFetcher) (cilium.Options, error) {
	opts := c.Cilium.Options
	if len(c.Cilium.ValuesFiles) == 0 {
		return opts, nil
	}

	fileValues, err := ResolveValuesFiles(ctx, c.Cilium.ValuesFiles, fetcher)
	if err != nil {
		return cilium.Options{}, err
	}
	opts.Values = helm.MergeAll(fileValues, opts.Values)
	return opts, nil
}
