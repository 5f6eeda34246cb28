package addons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/testruction/cilium-addon/internal/addons/helm"
)

// Observer is notified around each addon deployment.
type Observer interface {
	AddonStarted(name string)
	AddonFinished(name string, result *helm.InstallResult, duration time.Duration, err error)
}

// DeployResult records the outcome of one deployed addon.
type DeployResult struct {
	Addon    string
	Result   *helm.InstallResult
	Duration time.Duration
}

type deployConfig struct {
	logger    logr.Logger
	observers []Observer
	now       func() time.Time
}

// DeployOption configures Deploy.
type DeployOption func(*deployConfig)

// WithDeployLogger sets the logger used by Deploy.
func WithDeployLogger(logger logr.Logger) DeployOption {
	return func(c *deployConfig) { c.logger = logger }
}

// WithObserver adds an observer notified around each addon.
func WithObserver(o Observer) DeployOption {
	return func(c *deployConfig) { c.observers = append(c.observers, o) }
}

// Deploy schedules every addon on the cluster, provides the cluster
// resources and then deploys the addons in dependency order, stopping at the
// first failure.
//
// Scheduling happens up front so that each addon can check its hard
// requirements against the registry before any release is installed.
func Deploy(ctx context.Context, cluster *ClusterInfo, installer helm.Installer, addonList []Addon, opts ...DeployOption) ([]DeployResult, error) {
	cfg := &deployConfig{
		logger: logr.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ordered, err := SortByDependencies(addonList)
	if err != nil {
		return nil, err
	}

	for _, a := range ordered {
		cluster.ScheduleAddon(a.Ref())
	}

	if err := cluster.ProvideResources(ctx); err != nil {
		return nil, err
	}

	results := make([]DeployResult, 0, len(ordered))
	for _, a := range ordered {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		name := a.Name()
		log := cfg.logger.WithValues("addon", name)
		log.Info("deploying addon")
		for _, o := range cfg.observers {
			o.AddonStarted(name)
		}

		start := cfg.now()
		res, err := a.Deploy(ctx, cluster, installer)
		elapsed := cfg.now().Sub(start)

		for _, o := range cfg.observers {
			o.AddonFinished(name, res, elapsed, err)
		}
		if err != nil {
			log.Error(err, "addon deployment failed")
			return results, fmt.Errorf("failed to deploy addon %s: %w", name, err)
		}

		log.Info("addon deployed", "duration", elapsed.String())
		results = append(results, DeployResult{Addon: name, Result: res, Duration: elapsed})
	}

	return results, nil
}

// SortByDependencies orders addons so that every addon follows the addons it
// depends on. Dependencies outside the list are ignored. Among addons whose
// dependencies are satisfied, input order is kept, so the result is stable.
func SortByDependencies(addonList []Addon) ([]Addon, error) {
	present := make(map[string]bool, len(addonList))
	for _, a := range addonList {
		present[a.Name()] = true
	}

	done := make(map[string]bool, len(addonList))
	ordered := make([]Addon, 0, len(addonList))
	remaining := append([]Addon(nil), addonList...)

	for len(remaining) > 0 {
		progressed := false
		next := remaining[:0]
		for _, a := range remaining {
			if !progressed && dependenciesDone(a, present, done) {
				ordered = append(ordered, a)
				done[a.Name()] = true
				progressed = true
				continue
			}
			next = append(next, a)
		}
		remaining = next

		if !progressed {
			names := make([]string, 0, len(remaining))
			for _, a := range remaining {
				names = append(names, a.Name())
			}
			return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(names, ", "))
		}
	}

	return ordered, nil
}

func dependenciesDone(a Addon, present, done map[string]bool) bool {
	for _, dep := range a.Dependencies() {
		if present[dep] && !done[dep] {
			return false
		}
	}
	return true
}
