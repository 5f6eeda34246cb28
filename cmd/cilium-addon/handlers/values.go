package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/itchyny/gojq"
	"gomodules.xyz/jsonpatch/v2"

	"github.com/testruction/cilium-addon/internal/addons/cilium"
	"github.com/testruction/cilium-addon/internal/addons/helm"
)

// ValuesOptions configures the values command.
type ValuesOptions struct {
	// Format is yaml or json.
	Format string
	// Query is a jq expression applied to the output document.
	Query string
	// Diff prints a JSON patch from the base values to the final values
	// instead of the values themselves.
	Diff bool
	// Output is "" for stdout, a file path or an s3:// URI.
	Output string
}

// Values computes the final Cilium chart values for the blueprint without
// contacting the cluster. Dependencies come from the blueprint's
// externalAddons.
func Values(ctx context.Context, env Env, opts ValuesOptions) error {
	if err := validateFormat(opts.Format); err != nil {
		return err
	}

	cfg, err := loadBlueprint(env)
	if err != nil {
		return err
	}

	store, err := objectStoreFor(ctx, env, cfg, opts.Output)
	if err != nil {
		return err
	}

	ciliumOpts, err := cfg.CiliumOptions(ctx, store)
	if err != nil {
		return err
	}

	cluster := cfg.NewClusterInfo()
	if err := cluster.ProvideResources(ctx); err != nil {
		return err
	}

	addon := cilium.New(ciliumOpts, cilium.WithLogger(env.Logger))
	values, err := addon.Values(cluster, cluster)
	if err != nil {
		return err
	}

	var doc any = values.ToMap()
	if opts.Diff {
		doc, err = valuesPatch(cilium.BaseValues(), values)
		if err != nil {
			return err
		}
	}

	if opts.Query != "" {
		doc, err = runQuery(ctx, opts.Query, doc)
		if err != nil {
			return err
		}
	}

	data, err := encode(doc, opts.Format)
	if err != nil {
		return err
	}
	return writeOutput(ctx, env, store, opts.Output, data)
}

// valuesPatch returns the RFC 6902 patch turning from into to, ordered by
// path.
func valuesPatch(from, to helm.Values) ([]any, error) {
	fromJSON, err := from.ToJSON()
	if err != nil {
		return nil, err
	}
	toJSON, err := to.ToJSON()
	if err != nil {
		return nil, err
	}

	ops, err := jsonpatch.CreatePatch(fromJSON, toJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to create values patch: %w", err)
	}
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Operation < ops[j].Operation
	})

	patch := make([]any, 0, len(ops))
	for _, op := range ops {
		var generic any
		if err := toGeneric(op, &generic); err != nil {
			return nil, err
		}
		patch = append(patch, generic)
	}
	return patch, nil
}

// runQuery evaluates a jq expression against doc. A single result is
// returned as is, several results as a list.
func runQuery(ctx context.Context, src string, doc any) (any, error) {
	query, err := gojq.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", src, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", src, err)
	}

	var input any
	if err := toGeneric(doc, &input); err != nil {
		return nil, err
	}

	var results []any
	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("query %q failed: %w", src, err)
		}
		results = append(results, v)
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// toGeneric converts v into plain JSON types.
func toGeneric(v any, out *any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to convert document: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to convert document: %w", err)
	}
	return nil
}
