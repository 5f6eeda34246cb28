// Package cilium provides the Cilium CNI addon for EKS clusters.
//
// The addon installs the Cilium chart in ENI mode. Its values are computed in
// three layers: the fixed ENI base values, an optional Hubble UI overlay that
// exposes the UI through an AWS load balancer ingress, and the user supplied
// values, merged last with [helm.DeepMerge].
//
// The Hubble overlay needs the aws-load-balancer-controller addon. When a
// certificate resource name is configured, the ingress also listens on HTTPS
// and carries the certificate ARN resolved from the cluster resource registry.
package cilium
