// Package s3 implements blobstore.Store on Amazon S3.
//
// Uploads stream through the SDK's multipart uploader so checkpoints larger
// than memory never need buffering. Object keys are the blob names joined
// under a configurable root prefix.
package s3
