// Package retry retries operations that fail transiently, with exponential
// backoff between attempts.
//
// [Do] is used for Kubernetes API lookups and Pushgateway uploads. Errors
// wrapped with [Permanent] stop the retries immediately.
package retry
