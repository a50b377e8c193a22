package storage

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Upload streams the file to the identity's bucket as a single put of
// exactly size bytes tagged with contentType, provisioning the bucket first
// if needed. The reader is forwarded as-is — the gateway adds no buffering
// of its own — and nothing is retried. Returns the backend-confirmed object
// name.
func (g *Gateway) Upload(ctx context.Context, identity, name string, r io.Reader, size int64, contentType string) (string, error) {
	bucket, err := g.EnsureBucket(ctx, identity)
	if err != nil {
		return "", err
	}

	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(name),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "object upload failed",
			slog.String("bucket", bucket),
			slog.String("object", name),
			slog.String("error", err.Error()),
		)
		return "", wrapS3Error(err, ErrUploadFailed)
	}

	return name, nil
}

// Stat returns live metadata for one object. An absent object yields
// ErrNotFound; anything else from the backend yields an ErrBackend-wrapped
// fault. The ETag is unquoted for client-facing consistency.
func (g *Gateway) Stat(ctx context.Context, identity, object string) (*FileObject, error) {
	bucket := g.Bucket(identity)

	out, err := g.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrBackend)
	}

	fo := &FileObject{
		Name: object,
		ETag: unquoteETag(aws.ToString(out.ETag)),
	}
	if out.ContentLength != nil {
		fo.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		fo.LastModified = *out.LastModified
	}
	if out.ContentType != nil {
		fo.ContentType = *out.ContentType
	}
	return fo, nil
}

// List returns all objects under prefix in the identity's bucket, walking
// every page recursively. A bucket that was never provisioned lists as
// empty — that is not an error.
func (g *Gateway) List(ctx context.Context, identity, prefix string) ([]FileObject, error) {
	bucket := g.Bucket(identity)

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var files []FileObject
	paginator := s3.NewListObjectsV2Paginator(g.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isNoSuchBucket(err) {
				return nil, nil
			}
			return nil, wrapS3Error(err, ErrBackend)
		}

		for _, obj := range page.Contents {
			fo := FileObject{
				Name: aws.ToString(obj.Key),
				ETag: unquoteETag(aws.ToString(obj.ETag)),
			}
			if obj.Size != nil {
				fo.Size = *obj.Size
			}
			if obj.LastModified != nil {
				fo.LastModified = *obj.LastModified
			}
			files = append(files, fo)
		}
	}
	return files, nil
}

// PresignedDownloadURL verifies the object exists, then mints a fresh
// time-bounded capability URL for it. URLs are never cached or reused;
// every call hits the backend twice (stat + presign).
func (g *Gateway) PresignedDownloadURL(ctx context.Context, identity, object string, ttl time.Duration) (string, error) {
	if _, err := g.Stat(ctx, identity, object); err != nil {
		return "", err
	}

	bucket := g.Bucket(identity)
	req, err := g.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		g.logger.ErrorContext(ctx, "presign failed",
			slog.String("bucket", bucket),
			slog.String("object", object),
			slog.String("error", err.Error()),
		)
		return "", wrapS3Error(err, ErrPresignFailed)
	}

	return req.URL, nil
}

// Ping verifies the backend is reachable. Used as a health check.
func (g *Gateway) Ping(ctx context.Context) error {
	if _, err := g.client.ListBuckets(ctx, &s3.ListBucketsInput{}); err != nil {
		return wrapS3Error(err, ErrBackend)
	}
	return nil
}

// unquoteETag strips the quoting artifacts S3 wraps ETags in.
func unquoteETag(etag string) string {
	return strings.Trim(etag, `"`)
}
