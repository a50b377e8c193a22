package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Backend bucket-name length bounds (S3/MinIO: 3 to 63 characters).
const (
	minBucketNameLen = 3
	maxBucketNameLen = 63
)

// hashNameLen is the hex-digest width used when the normalized name
// overflows the length bound.
const hashNameLen = 8

var (
	invalidBucketChars = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRuns         = regexp.MustCompile(`-+`)
)

// BucketName derives the backend bucket for an identity. The function is
// pure and deterministic: lowercase, '@' and '.' become hyphens, every other
// non [a-z0-9-] character is stripped, hyphen runs collapse, leading and
// trailing hyphens are trimmed, and prefix is prepended. Too-short results
// get a fixed suffix; a result over the backend's maximum is replaced
// entirely by prefix plus a fixed-width hash of the raw identity, which is
// the one documented spot where distinct identities may collide.
func BucketName(prefix, identity string) string {
	name := strings.ToLower(identity)
	name = strings.NewReplacer("@", "-", ".", "-").Replace(name)
	name = invalidBucketChars.ReplaceAllString(name, "")
	name = hyphenRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	name = prefix + name

	if len(name) < minBucketNameLen {
		name += "-bucket"
	}
	if len(name) > maxBucketNameLen {
		sum := md5.Sum([]byte(identity))
		name = prefix + hex.EncodeToString(sum[:])[:hashNameLen]
	}
	return name
}

// Bucket returns the bucket name for an identity under this gateway's prefix.
func (g *Gateway) Bucket(identity string) string {
	return BucketName(g.cfg.BucketPrefix, identity)
}

// EnsureBucket provisions the identity's bucket if it does not exist yet and
// returns its name. Idempotent; concurrent calls for the same bucket are
// collapsed into one backend round-trip. The capacity quota marker is
// best-effort: failures are logged and swallowed so provisioning never fails
// merely because the backend ignores quotas.
func (g *Gateway) EnsureBucket(ctx context.Context, identity string) (string, error) {
	bucket := g.Bucket(identity)

	_, err, _ := g.provision.Do(bucket, func() (any, error) {
		_, err := g.client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(bucket),
		})
		if err == nil {
			return nil, nil
		}
		if !isNotFound(err) {
			return nil, wrapS3Error(err, ErrBackend)
		}

		if _, err := g.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(bucket),
		}); err != nil {
			// Losing a create race to another node is success.
			var owned *types.BucketAlreadyOwnedByYou
			var exists *types.BucketAlreadyExists
			if !errors.As(err, &owned) && !errors.As(err, &exists) {
				return nil, wrapS3Error(err, ErrProvisionFailed)
			}
		}

		g.logger.InfoContext(ctx, "bucket provisioned",
			slog.String("bucket", bucket),
		)
		g.applyQuota(ctx, bucket)
		return nil, nil
	})
	if err != nil {
		return "", err
	}
	return bucket, nil
}

// applyQuota tags the bucket with its advisory capacity. MinIO has no
// first-class quota call in the S3 API, so the marker rides on bucket
// tagging for the backend's policy engine to pick up.
func (g *Gateway) applyQuota(ctx context.Context, bucket string) {
	if g.cfg.QuotaBytes <= 0 {
		return
	}

	_, err := g.client.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket: aws.String(bucket),
		Tagging: &types.Tagging{
			TagSet: []types.Tag{{
				Key:   aws.String("max-size-bytes"),
				Value: aws.String(fmt.Sprintf("%d", g.cfg.QuotaBytes)),
			}},
		},
	})
	if err != nil {
		g.logger.WarnContext(ctx, "bucket quota not applied",
			slog.String("bucket", bucket),
			slog.String("error", err.Error()),
		)
	}
}
