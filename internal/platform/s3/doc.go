// Package s3 provides a client for S3-compatible object storage.
//
// It streams codebase archives referenced by s3://bucket/key URLs and
// uploads batch result files. Any S3-compatible endpoint works; path-style
// addressing can be enabled for servers such as MinIO.
package s3
