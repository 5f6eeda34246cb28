// Package config loads the blueprint file describing a Cilium addon deployment.
//
// A blueprint names the cluster, the addons already running in it, the
// certificates to import, and the Cilium addon options. Values files may be
// local paths or s3://bucket/key references; they are merged in order and the
// inline values are merged last.
//
// Runtime settings that are not part of the blueprint (kubeconfig, log level,
// dry run) are read through viper from flags and CILIUM_ADDON_* environment
// variables, see [Settings].
package config
