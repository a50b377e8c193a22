package storage_test

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

// apiError builds a generic backend API error with the given code.
func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

func errBucketAlreadyOwned() error {
	return &types.BucketAlreadyOwnedByYou{}
}

type fakeObject struct {
	content      []byte
	contentType  string
	etag         string
	lastModified time.Time
}

// fakeS3 is an in-memory stand-in for the S3 backend implementing both
// storage.S3Client and storage.PresignClient.
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]map[string]fakeObject

	createCalls  int
	tagCalls     int
	putCalls     int
	presignCalls int

	headBucketErr error
	createErr     error
	tagErr        error
	putErr        error
	headObjErr    error
	listErr       error
	presignErr    error

	lastPutBucket      string
	lastPutKey         string
	lastPutContentType string
	lastPutLength      int64
	lastPutBody        []byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{buckets: make(map[string]map[string]fakeObject)}
}

// addBucket pre-provisions a bucket.
func (f *fakeS3) addBucket(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[name]; !ok {
		f.buckets[name] = make(map[string]fakeObject)
	}
}

// addObject pre-loads an object, provisioning its bucket.
func (f *fakeS3) addObject(bucket, key string, obj fakeObject) {
	f.addBucket(bucket)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucket][key] = obj
}

func (f *fakeS3) HeadBucket(_ context.Context, params *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headBucketErr != nil {
		return nil, f.headBucketErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buckets[aws.ToString(params.Bucket)]; !ok {
		return nil, apiError("NotFound")
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(_ context.Context, params *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.addBucket(aws.ToString(params.Bucket))
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutBucketTagging(_ context.Context, _ *s3.PutBucketTaggingInput, _ ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error) {
	f.mu.Lock()
	f.tagCalls++
	f.mu.Unlock()
	if f.tagErr != nil {
		return nil, f.tagErr
	}
	return &s3.PutBucketTaggingOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	f.putCalls++
	f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.lastPutBucket = aws.ToString(params.Bucket)
	f.lastPutKey = aws.ToString(params.Key)
	f.lastPutContentType = aws.ToString(params.ContentType)
	f.lastPutLength = aws.ToInt64(params.ContentLength)
	f.lastPutBody = body
	f.mu.Unlock()

	f.addObject(aws.ToString(params.Bucket), aws.ToString(params.Key), fakeObject{
		content:      body,
		contentType:  aws.ToString(params.ContentType),
		etag:         `"fake-etag"`,
		lastModified: time.Now(),
	})
	return &s3.PutObjectOutput{ETag: aws.String(`"fake-etag"`)}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headObjErr != nil {
		return nil, f.headObjErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	objects, ok := f.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, apiError("NotFound")
	}
	obj, ok := objects[aws.ToString(params.Key)]
	if !ok {
		return nil, apiError("NotFound")
	}

	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.content))),
		ContentType:   aws.String(obj.contentType),
		ETag:          aws.String(obj.etag),
		LastModified:  aws.Time(obj.lastModified),
	}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	objects, ok := f.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &types.NoSuchBucket{}
	}

	prefix := aws.ToString(params.Prefix)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for key, obj := range objects {
		if prefix != "" && len(key) >= len(prefix) && key[:len(prefix)] != prefix {
			continue
		}
		if prefix != "" && len(key) < len(prefix) {
			continue
		}
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(obj.content))),
			ETag:         aws.String(obj.etag),
			LastModified: aws.Time(obj.lastModified),
		})
	}
	return out, nil
}

func (f *fakeS3) ListBuckets(_ context.Context, _ *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	return &s3.ListBucketsOutput{}, nil
}

func (f *fakeS3) PresignGetObject(_ context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.mu.Lock()
	f.presignCalls++
	f.mu.Unlock()
	if f.presignErr != nil {
		return nil, f.presignErr
	}

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
