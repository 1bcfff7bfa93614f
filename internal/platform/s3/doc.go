// Package s3 provides a small client for S3-compatible object storage.
//
// tcstack keeps its password state in a single object shared by every
// machine that runs against the same stack. The client
// creates the bucket on demand and maps the various "does not exist" error
// shapes of S3-compatible services onto [IsNotFound].
package s3
