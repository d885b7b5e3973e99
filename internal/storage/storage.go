// Package storage removes media objects held in external object storage.
package storage

import (
	"context"
	"fmt"
	"strings"

	"vidtube/internal/config"
	"vidtube/internal/middleware"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore deletes objects by the external ID recorded on a media asset.
type ObjectStore interface {
	Delete(ctx context.Context, externalID string) error
}

// S3Store implements ObjectStore backed by an S3-compatible service.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store configures a client targeting the configured bucket. A custom
// endpoint switches to path-style addressing for MinIO and friends.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.StorageBucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.StorageRegion),
	}
	if cfg.StorageAccessKey != "" && cfg.StorageSecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.StorageEndpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.StorageBucket}, nil
}

// Delete removes the object. Deleting a missing key succeeds.
func (s *S3Store) Delete(ctx context.Context, externalID string) error {
	key := strings.TrimLeft(externalID, "/")
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 storage delete %s: %w", key, err)
	}
	return nil
}

// NoopStore is used when object storage is disabled. It only logs.
type NoopStore struct{}

// Delete implements ObjectStore.
func (NoopStore) Delete(ctx context.Context, externalID string) error {
	if externalID != "" {
		middleware.Logger.DebugContext(ctx, "object storage disabled, skipping delete", "external_id", externalID)
	}
	return nil
}

// New returns the S3 store when storage is enabled and NoopStore otherwise.
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	if !cfg.StorageEnabled {
		return NoopStore{}, nil
	}
	return NewS3Store(ctx, cfg)
}
