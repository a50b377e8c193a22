package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Sentinel errors for gateway operations.
var (
	// Configuration errors.
	ErrInvalidConfig = errors.New("storage: invalid configuration")

	// ErrNotFound marks an absent object or bucket. It is a normal outcome,
	// distinct from backend faults.
	ErrNotFound = errors.New("storage: not found")

	// Backend operation errors.
	ErrBackend         = errors.New("storage: backend error")
	ErrProvisionFailed = errors.New("storage: bucket provisioning failed")
	ErrUploadFailed    = errors.New("storage: upload failed")
	ErrPresignFailed   = errors.New("storage: presign failed")
)

// wrapS3Error wraps backend errors with the appropriate sentinel.
// It checks both API error codes and typed errors.
// Note: the original error is folded in with %v, not %w — callers match with
// errors.Is on the sentinels, never errors.As on AWS types.
func wrapS3Error(err error, fallback error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}

// isNotFound reports whether err is any of the backend's absence signals:
// NoSuchKey/NoSuchBucket typed errors, or the bare "NotFound" code that
// HeadObject and HeadBucket return instead.
func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return true
		}
	}
	return false
}

// isNoSuchBucket reports whether err means the bucket itself is absent.
func isNoSuchBucket(err error) bool {
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchBucket"
	}
	return false
}
