package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sayandeep-bot/spectosoft/types"
)

// S3Config holds configuration for the S3 delivery backend. Only the
// bucket is required; Endpoint and UsePathStyle exist for S3-compatible
// stores (Cloudflare R2, MinIO), which generally need both.
type S3Config struct {
	Bucket       string
	Prefix       string // key prefix within the bucket
	Region       string // empty defers to the AWS default chain
	Endpoint     string // empty uses the stock AWS endpoint
	UsePathStyle bool   // bucket in the path instead of the subdomain
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// ParseS3Path splits a "bucket/prefix" destination; the prefix part is
// optional and may itself contain slashes.
func ParseS3Path(p string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(p, "/")
	return bucket, prefix
}

// S3Uploader delivers artifacts with PutObject. Keys follow
// <prefix>/<kind>/<day>/<filename>, where the day is taken from the
// artifact's pending partition so remote layout mirrors the local one.
type S3Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Uploader creates an uploader with the AWS SDK default credential
// chain (env vars, shared config, IAM role).
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Uploader{
		client: s3.NewFromConfig(awsConfig, s3Opts...),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Send uploads one artifact. A confirmed PutObject is the only success.
func (u *S3Uploader) Send(ctx context.Context, artifact string, kind types.Kind) error {
	ctx, cancel := context.WithTimeout(ctx, kind.DeliverTimeout())
	defer cancel()

	f, err := os.Open(artifact)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact: %w", err)
	}

	day := filepath.Base(filepath.Dir(artifact))
	key := path.Join(u.prefix, string(kind), day, filepath.Base(artifact))
	contentType := types.ContentType(filepath.Ext(artifact))
	size := info.Size()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &u.bucket,
		Key:           &key,
		Body:          f,
		ContentLength: &size,
		ContentType:   &contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

// Verify S3Uploader implements the uploader capability.
var _ Uploader = (*S3Uploader)(nil)
