package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"github.com/testruction/cilium-addon/internal/config"
)

// WriteConfig writes the blueprint to outputPath with a descriptive header.
// The file is replaced atomically.
func WriteConfig(cfg *config.Config, outputPath string) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(cfg, time.Now()))
	sb.WriteString("\n")
	sb.Write(data)

	if err := renameio.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func generateHeader(cfg *config.Config, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("# cilium-addon blueprint\n")
	sb.WriteString(fmt.Sprintf("# Generated: %s\n", now.UTC().Format(time.RFC3339)))
	sb.WriteString("#\n")
	sb.WriteString(fmt.Sprintf("# Cluster: %s\n", cfg.Cluster.Name))
	if cfg.Cilium.EnableALB {
		sb.WriteString("# Hubble UI: exposed through an ALB ingress\n")
	}
	sb.WriteString("#\n")
	sb.WriteString("# Unset cilium fields use the addon defaults.\n")
	sb.WriteString("# Preview the computed values with: cilium-addon values\n")
	return sb.String()
}
