package helm

// DefaultChartSpecs contains the default chart specifications for each addon.
// Users can override these settings via ChartOverride.
var DefaultChartSpecs = map[string]ChartSpec{
	"cilium": {
		Repository: "https://helm.cilium.io",
		Name:       "cilium",
		Version:    "1.13.4",
	},
}
