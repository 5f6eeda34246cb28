package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read into [Settings].
const EnvPrefix = "CILIUM_ADDON"

// Setting keys. Flags use the same names.
const (
	KeyConfig      = "config"
	KeyKubeconfig  = "kubeconfig"
	KeyKubeContext = "kube-context"
	KeyLogLevel    = "log-level"
	KeyDevelopment = "development"
	KeyDryRun      = "dry-run"
	KeyPushgateway = "pushgateway"
	KeyTimeout     = "timeout"
	KeyS3Endpoint  = "s3-endpoint"
)

// DefaultTimeout bounds a single install or upgrade.
const DefaultTimeout = 10 * time.Minute

// Settings are runtime options that are not part of the blueprint.
type Settings struct {
	ConfigPath  string
	Kubeconfig  string
	KubeContext string
	LogLevel    string
	Development bool
	DryRun      bool
	Pushgateway string
	Timeout     time.Duration
	S3Endpoint  string
}

// NewViper returns a viper instance reading CILIUM_ADDON_* variables, with
// dashes in keys mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyConfig, DefaultConfigFilename)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyTimeout, DefaultTimeout)
	return v
}

// BindFlags binds every known key that has a flag in fs.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range []string{
		KeyConfig, KeyKubeconfig, KeyKubeContext, KeyLogLevel, KeyDevelopment,
		KeyDryRun, KeyPushgateway, KeyTimeout, KeyS3Endpoint,
	} {
		flag := fs.Lookup(key)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	return nil
}

// LoadSettings reads the settings from v.
func LoadSettings(v *viper.Viper) (Settings, error) {
	s := Settings{
		ConfigPath:  v.GetString(KeyConfig),
		Kubeconfig:  v.GetString(KeyKubeconfig),
		KubeContext: v.GetString(KeyKubeContext),
		LogLevel:    v.GetString(KeyLogLevel),
		Development: v.GetBool(KeyDevelopment),
		DryRun:      v.GetBool(KeyDryRun),
		Pushgateway: v.GetString(KeyPushgateway),
		Timeout:     v.GetDuration(KeyTimeout),
		S3Endpoint:  v.GetString(KeyS3Endpoint),
	}
	if s.Timeout <= 0 {
		return Settings{}, fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	return s, nil
}
