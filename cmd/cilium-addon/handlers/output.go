package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/testruction/cilium-addon/internal/platform/s3"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

func validateFormat(format string) error {
	switch format {
	case FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q, use %s or %s", format, FormatYAML, FormatJSON)
	}
}

// encode renders doc in format. YAML map keys come out sorted.
func encode(doc any, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// writeOutput writes data to stdout ("" or "-"), an s3:// object, or a
// local file replaced atomically.
func writeOutput(ctx context.Context, env Env, store objectStore, output string, data []byte) error {
	switch {
	case output == "" || output == "-":
		if _, err := env.Out.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil

	case s3.IsURI(output):
		bucket, key, err := s3.ParseURI(output)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("output %s needs an s3 client", output)
		}
		if err := store.PutObject(ctx, bucket, key, data); err != nil {
			return err
		}
		env.Logger.Info("wrote output", "uri", output, "bytes", len(data))
		return nil

	default:
		if err := renameio.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		env.Logger.Info("wrote output", "path", output, "bytes", len(data))
		return nil
	}
}
