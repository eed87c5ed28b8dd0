package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config holds object storage connection settings. An empty Endpoint disables S3 sources.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// S3Fetcher reads a JSON document addressed as "bucket/key".
type S3Fetcher struct {
	client       *minio.Client
	maxBodyBytes int64
}

func NewS3Fetcher(cfg S3Config, maxBodyBytes int64) (*S3Fetcher, error) {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Endpoint == "" {
		return &S3Fetcher{maxBodyBytes: maxBodyBytes}, nil
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &S3Fetcher{client: mc, maxBodyBytes: maxBodyBytes}, nil
}

// SplitObject splits "bucket/key" into its parts.
func SplitObject(value string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(value, "/"), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: s3 value must be bucket/key, got %q", ErrInvalidSource, value)
	}
	return bucket, key, nil
}

func (f *S3Fetcher) Fetch(ctx context.Context, value string) (any, error) {
	bucket, key, err := SplitObject(value)
	if err != nil {
		return nil, err
	}
	if f.client == nil {
		return nil, fmt.Errorf("%w: s3 is not configured", ErrUnavailable)
	}

	obj, err := f.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyS3(err, value)
	}
	defer obj.Close()

	body, err := readBody(obj, f.maxBodyBytes)
	if err != nil {
		return nil, classifyS3(err, value)
	}
	return decodeDocument(body, f.maxBodyBytes)
}

func classifyS3(err error, value string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: s3 object %q", ErrNotFound, value)
	case "AccessDenied":
		return fmt.Errorf("%w: s3 object %q: %v", ErrFetch, value, err)
	default:
		return fmt.Errorf("%w: s3: %v", ErrUnavailable, err)
	}
}
