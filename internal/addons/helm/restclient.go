package helm

import (
	"errors"
	"fmt"
	"sync"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// ErrNoKubeconfig is returned when neither kubeconfig bytes nor a loadable
// kubeconfig path is available.
var ErrNoKubeconfig = errors.New("no kubeconfig available")

// RESTClientGetter implements genericclioptions.RESTClientGetter on top of
// either raw kubeconfig bytes or the standard loading rules (KUBECONFIG,
// ~/.kube/config) with an optional explicit path and context.
type RESTClientGetter struct {
	kubeconfig []byte
	path       string
	context    string
	namespace  string

	mu         sync.Mutex
	restConfig *rest.Config
}

// NewInMemoryRESTClientGetter creates a getter from kubeconfig bytes.
func NewInMemoryRESTClientGetter(kubeconfig []byte, namespace string) *RESTClientGetter {
	return &RESTClientGetter{
		kubeconfig: kubeconfig,
		namespace:  namespace,
	}
}

// NewPathRESTClientGetter creates a getter that loads kubeconfig from path,
// or from the default loading rules when path is empty. An empty
// kubeContext selects the current context.
func NewPathRESTClientGetter(path, kubeContext, namespace string) *RESTClientGetter {
	return &RESTClientGetter{
		path:      path,
		context:   kubeContext,
		namespace: namespace,
	}
}

// Namespace returns the namespace the getter was created for.
func (g *RESTClientGetter) Namespace() string {
	return g.namespace
}

// ToRESTConfig returns a REST config, built once and cached.
func (g *RESTClientGetter) ToRESTConfig() (*rest.Config, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.restConfig != nil {
		return g.restConfig, nil
	}

	cfg, err := g.ToRawKubeConfigLoader().ClientConfig()
	if err != nil {
		if clientcmd.IsEmptyConfig(err) {
			return nil, fmt.Errorf("%w: %v", ErrNoKubeconfig, err)
		}
		return nil, err
	}

	g.restConfig = cfg
	return g.restConfig, nil
}

// ToDiscoveryClient returns a cached discovery client.
func (g *RESTClientGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	restConfig, err := g.ToRESTConfig()
	if err != nil {
		return nil, err
	}

	dc, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, err
	}

	return memory.NewMemCacheClient(dc), nil
}

// ToRESTMapper returns a REST mapper for the cluster.
func (g *RESTClientGetter) ToRESTMapper() (meta.RESTMapper, error) {
	dc, err := g.ToDiscoveryClient()
	if err != nil {
		return nil, err
	}

	return restmapper.NewDeferredDiscoveryRESTMapper(dc), nil
}

// ToRawKubeConfigLoader returns a clientcmd.ClientConfig.
func (g *RESTClientGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	overrides := &clientcmd.ConfigOverrides{CurrentContext: g.context}
	if g.namespace != "" {
		overrides.Context.Namespace = g.namespace
	}

	if len(g.kubeconfig) > 0 {
		raw, err := clientcmd.Load(g.kubeconfig)
		if err != nil {
			raw = clientcmdapi.NewConfig()
		}
		return clientcmd.NewDefaultClientConfig(*raw, overrides)
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if g.path != "" {
		rules.ExplicitPath = g.path
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)
}
