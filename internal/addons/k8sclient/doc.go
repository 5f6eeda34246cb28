// Package k8sclient discovers addons that already run in a cluster.
//
// Addons installed outside a deployment run (for example the AWS load
// balancer controller managed by another tool) are detected by their
// Deployment and scheduled on the [addons.ClusterInfo], so that addons
// depending on them pass their pre-flight checks.
package k8sclient
