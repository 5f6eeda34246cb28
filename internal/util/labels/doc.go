// Package labels builds the Kubernetes labels put on objects created by
// cilium-addon, such as the release namespace.
//
// Keys use the app.kubernetes.io recommended labels plus a
// cilium-addon.io/cluster label naming the blueprint's cluster.
package labels
