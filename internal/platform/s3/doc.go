// Package s3 reads and writes Helm values files stored in Amazon S3 or an
// S3 compatible object store, addressed as s3://bucket/key.
package s3
