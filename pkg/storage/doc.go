// Package storage is the policy layer over an S3-compatible object store
// (MinIO in deployment) that keeps every identity's files in its own bucket.
//
// The bucket name is a pure, deterministic function of the identity
// (see BucketName), so no mapping table is needed anywhere. Buckets are
// provisioned lazily on first upload; concurrent provisioning for the same
// identity is deduplicated with singleflight.
//
// The Gateway performs streamed uploads, metadata stats, recursive listings,
// and presigned download URLs. It never caches object metadata — every read
// is a live round-trip — and it never retries: transient-fault policy belongs
// to the caller or the SDK layer, not here.
//
// Upload validation (extension allow-list, size cap, magic-byte MIME
// sniffing, filename sanitization) lives in Validator and runs before any
// byte reaches the backend.
package storage
