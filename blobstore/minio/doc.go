// Package minio implements blobstore.Store for MinIO and other
// S3-compatible object stores using the native MinIO client.
//
// Prefer this package over blobstore/s3 when targeting self-hosted
// deployments: the MinIO client speaks to any S3-compatible endpoint
// without AWS credential chains or region plumbing.
package minio
