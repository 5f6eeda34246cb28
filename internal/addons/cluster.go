package addons

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
)

// ErrInvalidCertificateARN is returned for certificate ARNs that are not ACM ARNs.
var ErrInvalidCertificateARN = errors.New("invalid certificate ARN")

// ClusterInfo carries the state shared by the addons of one deployment run:
// the addons scheduled so far and the resources provided for them.
// It implements both DependencyRegistry and ResourceRegistry. The zero value
// is ready to use, and a nil *ClusterInfo reads as an empty registry.
type ClusterInfo struct {
	Name   string
	Region string

	mu        sync.RWMutex
	scheduled map[string]AddonRef
	resources map[string]ResourceHandle
	providers map[string]ResourceProvider
}

// NewClusterInfo creates an empty ClusterInfo.
func NewClusterInfo(name, region string) *ClusterInfo {
	return &ClusterInfo{
		Name:      name,
		Region:    region,
		scheduled: make(map[string]AddonRef),
		resources: make(map[string]ResourceHandle),
		providers: make(map[string]ResourceProvider),
	}
}

// ScheduleAddon records that ref will be deployed in this run or already
// runs in the cluster.
func (c *ClusterInfo) ScheduleAddon(ref AddonRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scheduled == nil {
		c.scheduled = make(map[string]AddonRef)
	}
	c.scheduled[ref.Name] = ref
}

// ScheduledAddon returns a copy of the scheduled addon with the given name.
func (c *ClusterInfo) ScheduledAddon(name string) (*AddonRef, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.scheduled[name]
	if !ok {
		return nil, false
	}
	return &ref, true
}

// ScheduledAddons returns all scheduled addons sorted by name.
func (c *ClusterInfo) ScheduledAddons() []AddonRef {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	refs := make([]AddonRef, 0, len(c.scheduled))
	for _, ref := range c.scheduled {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs
}

// RegisterResource stores a resolved resource under name, replacing any
// previous registration.
func (c *ClusterInfo) RegisterResource(name string, handle ResourceHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resources == nil {
		c.resources = make(map[string]ResourceHandle)
	}
	c.resources[name] = handle
}

// LookupResource returns the resource registered under name.
func (c *ClusterInfo) LookupResource(name string) (ResourceHandle, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.resources[name]
	return h, ok
}

// AddResourceProvider adds a provider whose resource will be registered
// under name by ProvideResources.
func (c *ClusterInfo) AddResourceProvider(name string, provider ResourceProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.providers == nil {
		c.providers = make(map[string]ResourceProvider)
	}
	c.providers[name] = provider
}

// ProvideResources runs every provider in name order and registers the
// resources they return. It stops at the first failing provider.
func (c *ClusterInfo) ProvideResources(ctx context.Context) error {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.mu.RLock()
		provider := c.providers[name]
		c.mu.RUnlock()

		handle, err := provider.Provide(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to provide resource %s: %w", name, err)
		}
		c.RegisterResource(name, handle)
	}
	return nil
}

// Certificate is an ACM certificate available to the cluster.
type Certificate struct {
	ARN    string
	Domain string
}

// Identifier returns the certificate ARN.
func (c Certificate) Identifier() string {
	return c.ARN
}

// ImportCertificateProvider provides an existing ACM certificate by ARN.
type ImportCertificateProvider struct {
	ARN    string
	Domain string
}

// Provide validates the ARN and returns it as a Certificate.
func (p ImportCertificateProvider) Provide(_ context.Context, _ *ClusterInfo) (ResourceHandle, error) {
	if err := ValidateCertificateARN(p.ARN); err != nil {
		return nil, err
	}
	return Certificate{ARN: p.ARN, Domain: p.Domain}, nil
}

// ValidateCertificateARN checks that value is an ARN of the ACM service.
func ValidateCertificateARN(value string) error {
	parsed, err := arn.Parse(value)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidCertificateARN, value, err)
	}
	if parsed.Service != "acm" {
		return fmt.Errorf("%w: %q: service is %q, want acm", ErrInvalidCertificateARN, value, parsed.Service)
	}
	return nil
}
