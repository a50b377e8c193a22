package api_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type fakeObject struct {
	content      []byte
	contentType  string
	lastModified time.Time
}

// fakeS3 is a minimal in-memory backend implementing the storage
// gateway's client interfaces.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]map[string]fakeObject

	createCalls int
	putCalls    int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{buckets: make(map[string]map[string]fakeObject)}
}

func notFound() error {
	return &smithy.GenericAPIError{Code: "NotFound", Message: "NotFound"}
}

func (f *fakeS3) HeadBucket(_ context.Context, params *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[aws.ToString(params.Bucket)]; !ok {
		return nil, notFound()
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(_ context.Context, params *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if _, ok := f.buckets[aws.ToString(params.Bucket)]; !ok {
		f.buckets[aws.ToString(params.Bucket)] = make(map[string]fakeObject)
	}
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutBucketTagging(_ context.Context, _ *s3.PutBucketTaggingInput, _ ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error) {
	return &s3.PutBucketTaggingOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	bucket := aws.ToString(params.Bucket)
	if _, ok := f.buckets[bucket]; !ok {
		f.buckets[bucket] = make(map[string]fakeObject)
	}
	f.buckets[bucket][aws.ToString(params.Key)] = fakeObject{
		content:      body,
		contentType:  aws.ToString(params.ContentType),
		lastModified: time.Now(),
	}
	return &s3.PutObjectOutput{ETag: aws.String(`"fake-etag"`)}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objects, ok := f.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, notFound()
	}
	obj, ok := objects[aws.ToString(params.Key)]
	if !ok {
		return nil, notFound()
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.content))),
		ContentType:   aws.String(obj.contentType),
		ETag:          aws.String(`"fake-etag"`),
		LastModified:  aws.Time(obj.lastModified),
	}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objects, ok := f.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &types.NoSuchBucket{}
	}

	prefix := aws.ToString(params.Prefix)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for key, obj := range objects {
		if len(key) < len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(obj.content))),
			ETag:         aws.String(`"fake-etag"`),
			LastModified: aws.Time(obj.lastModified),
		})
	}
	return out, nil
}

func (f *fakeS3) ListBuckets(_ context.Context, _ *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	return &s3.ListBucketsOutput{}, nil
}

func (f *fakeS3) PresignGetObject(_ context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := &s3.PresignOptions{}
	for _, fn := range optFns {
		fn(opts)
	}
	url := fmt.Sprintf("http://minio.local/%s/%s?X-Amz-Expires=%d",
		aws.ToString(params.Bucket),
		aws.ToString(params.Key),
		int(opts.Expires.Seconds()),
	)
	return &v4.PresignedHTTPRequest{URL: url, Method: "GET"}, nil
}
