package helm

// ChartOverride holds user supplied replacements for a default chart spec.
// Empty fields keep the default.
type ChartOverride struct {
	Repository string
	Chart      string
	Version    string
}

// GetChartSpec returns the chart spec for the given addon name with the
// override applied. Unknown addons start from an empty spec, so the caller
// must supply every field through the override.
func GetChartSpec(name string, override ChartOverride) ChartSpec {
	spec := DefaultChartSpecs[name]

	if override.Repository != "" {
		spec.Repository = override.Repository
	}
	if override.Chart != "" {
		spec.Name = override.Chart
	}
	if override.Version != "" {
		spec.Version = override.Version
	}

	return spec
}
