package storage

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/singleflight"
)

// Config holds S3-compatible backend configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// Endpoint is the backend URL (e.g., http://minio:9000).
	Endpoint string `yaml:"endpoint" env:"S3_ENDPOINT"`

	// AccessKey / SecretKey are the backend credentials (required).
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`

	// Region is the signing region (default: us-east-1).
	Region string `yaml:"region" env:"S3_REGION"`

	// BucketPrefix is prepended to every derived bucket name.
	BucketPrefix string `yaml:"bucket_prefix" env:"S3_BUCKET_PREFIX"`

	// PathStyle enables path-style addressing (required for MinIO).
	PathStyle bool `yaml:"path_style" env:"S3_PATH_STYLE"`

	// QuotaBytes is the advisory per-bucket capacity applied on creation.
	// Zero disables the quota marker.
	QuotaBytes int64 `yaml:"quota_bytes" env:"S3_QUOTA_BYTES"`
}

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.BucketPrefix == "" {
		c.BucketPrefix = "user-"
	}
}

// validate checks that required configuration fields are set.
func (c *Config) validate() error {
	if c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// FileObject is object metadata mirrored from the backend.
// It is never cached; every value comes from a live round-trip.
type FileObject struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
}

// S3Client is the subset of the S3 API the gateway uses.
// Narrowed to an interface so tests can substitute a fake backend.
type S3Client interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketTagging(ctx context.Context, params *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

// PresignClient is the presigning subset used for download URLs.
type PresignClient interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Gateway performs per-identity object operations against the backend.
type Gateway struct {
	client    S3Client
	presigner PresignClient
	logger    *slog.Logger
	cfg       Config
	provision singleflight.Group
}

// New creates a Gateway with a real S3 client built from cfg.
func New(cfg Config, opts ...GatewayOption) (*Gateway, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	clientOpts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	client := s3.New(s3.Options{}, clientOpts...)
	g := &Gateway{
		client:    client,
		presigner: s3.NewPresignClient(client),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the logger used for best-effort failure reporting.
func WithLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClients overrides the backend clients. Tests use this to inject fakes.
func WithClients(client S3Client, presigner PresignClient) GatewayOption {
	return func(g *Gateway) {
		if client != nil {
			g.client = client
		}
		if presigner != nil {
			g.presigner = presigner
		}
	}
}

// NewWithClients creates a Gateway over pre-built clients, skipping the
// credential validation that a real connection needs.
func NewWithClients(cfg Config, client S3Client, presigner PresignClient, opts ...GatewayOption) *Gateway {
	cfg.applyDefaults()
	g := &Gateway{
		client:    client,
		presigner: presigner,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
