package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"calltimes/internal/domain"
)

// S3Config holds configuration for an S3-compatible blob store. Endpoint may
// point at AWS S3, Cloudflare R2, or MinIO; PublicBaseURL is the CDN or
// bucket URL download links are built from.
type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
}

type s3BlobStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3BlobStore creates a domain.BlobStore backed by an S3-compatible
// object store.
func NewS3BlobStore(cfg S3Config) (domain.BlobStore, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" || cfg.PublicBaseURL == "" {
		return nil, errors.New("invalid blob storage configuration: credentials, bucket, and public base URL are required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &s3BlobStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *s3BlobStore) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*domain.BlobUploadResult, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	}
	result, err := s.client.PutObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to upload object (key: %s): %w", key, err)
	}

	etag := ""
	if result.ETag != nil {
		// S3-compatible APIs return the ETag wrapped in double quotes.
		etag = strings.Trim(*result.ETag, "\"")
	}
	return &domain.BlobUploadResult{
		Key:      key,
		Location: s.PublicURL(key),
		ETag:     etag,
	}, nil
}

func (s *s3BlobStore) Delete(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if _, err := s.client.DeleteObject(ctx, input); err != nil {
		return fmt.Errorf("failed to delete object (key: %s): %w", key, err)
	}
	return nil
}

func (s *s3BlobStore) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	// Keys contain file names supplied by users; escape each path segment.
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicBaseURL + "/" + strings.Join(segments, "/")
}
