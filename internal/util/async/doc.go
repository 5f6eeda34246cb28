// Package async runs independent operations concurrently.
//
// [RunParallel] starts every task, waits for all of them and reports the
// failures in task order. The addon probe uses it to look up several
// Deployments at once.
package async
