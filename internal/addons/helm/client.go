package helm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/storage/driver"
)

// DefaultTimeout bounds a single install or upgrade.
const DefaultTimeout = 10 * time.Minute

// Client provides Helm install and upgrade operations against a live cluster.
type Client struct {
	namespace    string
	actionConfig *action.Configuration
	loadChart    ChartLoader
	logger       logr.Logger
	timeout      time.Duration
	wait         bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger routes Helm SDK debug output to logger at V(1).
func WithLogger(logger logr.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithWait makes install and upgrade wait for resources to become ready.
func WithWait(wait bool) ClientOption {
	return func(c *Client) { c.wait = wait }
}

// WithChartLoader replaces the chart loader, mainly for tests.
func WithChartLoader(loader ChartLoader) ClientOption {
	return func(c *Client) { c.loadChart = loader }
}

// NewClient creates a Helm client that stores release state as secrets in namespace.
func NewClient(getter *RESTClientGetter, namespace string, opts ...ClientOption) (*Client, error) {
	c := newClient(new(action.Configuration), namespace, opts...)

	debug := func(format string, v ...interface{}) {
		c.logger.V(1).Info(fmt.Sprintf(format, v...))
	}
	if err := c.actionConfig.Init(getter, namespace, "secret", debug); err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	return c, nil
}

func newClient(actionConfig *action.Configuration, namespace string, opts ...ClientOption) *Client {
	c := &Client{
		namespace:    namespace,
		actionConfig: actionConfig,
		logger:       logr.Discard(),
		timeout:      DefaultTimeout,
		wait:         true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.loadChart == nil {
		c.loadChart = DefaultChartLoader(nil)
	}
	return c
}

// Install installs the release, or upgrades it when it already exists.
func (c *Client) Install(ctx context.Context, rel Release, values Values) (*InstallResult, error) {
	if err := rel.Validate(); err != nil {
		return nil, err
	}

	ch, err := c.loadChart(ctx, rel.Chart)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	exists, err := c.ReleaseExists(rel.Name)
	if err != nil {
		return nil, err
	}

	if rel.CreateNamespace && len(rel.NamespaceLabels) > 0 {
		// Helm creates the namespace without labels; only TemplateInstaller renders them.
		c.logger.Info("namespace labels are not applied by live install", "namespace", rel.Namespace, "labels", rel.NamespaceLabels)
	}

	var res *release.Release
	if exists {
		c.logger.Info("upgrading release", "release", rel.Name, "namespace", rel.Namespace, "chart", rel.Chart.String())
		res, err = c.upgrade(ctx, rel, ch, values)
	} else {
		c.logger.Info("installing release", "release", rel.Name, "namespace", rel.Namespace, "chart", rel.Chart.String())
		res, err = c.install(ctx, rel, ch, values)
	}
	if err != nil {
		return nil, err
	}

	result := &InstallResult{
		Release:   res.Name,
		Namespace: res.Namespace,
		Revision:  res.Version,
		Manifest:  res.Manifest,
	}
	if res.Info != nil {
		result.Status = res.Info.Status.String()
	}
	return result, nil
}

func (c *Client) install(ctx context.Context, rel Release, ch *chart.Chart, values Values) (*release.Release, error) {
	installClient := action.NewInstall(c.actionConfig)
	installClient.ReleaseName = rel.Name
	installClient.Namespace = rel.Namespace
	installClient.CreateNamespace = rel.CreateNamespace
	installClient.Version = rel.Chart.Version
	installClient.Wait = c.wait
	installClient.Timeout = c.timeout

	res, err := installClient.RunWithContext(ctx, ch, values.ToMap())
	if err != nil {
		return nil, fmt.Errorf("failed to install release %s: %w", rel.Name, err)
	}
	return res, nil
}

func (c *Client) upgrade(ctx context.Context, rel Release, ch *chart.Chart, values Values) (*release.Release, error) {
	upgradeClient := action.NewUpgrade(c.actionConfig)
	upgradeClient.Namespace = rel.Namespace
	upgradeClient.Version = rel.Chart.Version
	upgradeClient.Wait = c.wait
	upgradeClient.Timeout = c.timeout
	upgradeClient.ReuseValues = false

	res, err := upgradeClient.RunWithContext(ctx, rel.Name, ch, values.ToMap())
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade release %s: %w", rel.Name, err)
	}
	return res, nil
}

// ReleaseExists checks if a release exists.
func (c *Client) ReleaseExists(releaseName string) (bool, error) {
	histClient := action.NewHistory(c.actionConfig)
	histClient.Max = 1
	_, err := histClient.Run(releaseName)
	if errors.Is(err, driver.ErrReleaseNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query release history: %w", err)
	}
	return true, nil
}
