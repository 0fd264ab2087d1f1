// Package objectstore stores layer records as objects in an S3-compatible
// bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jsamuelsen11/layerflow/internal/adapters/storage"
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Name is the storage kind and health check name.
const Name = "object-store"

// Compile-time interface checks.
var (
	_ ports.StorageHandler = (*Store)(nil)
	_ ports.HealthChecker  = (*Store)(nil)
	_ API                  = (*s3.Client)(nil)
)

// API is the subset of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Store writes one JSON object per layer under prefix/<trace_id>/<path>.json.
type Store struct {
	api    API
	bucket string
	prefix string
	logger *slog.Logger
}

// New builds an S3 client from cfg. Static credentials are used when both
// keys are set; otherwise the default AWS credential chain applies. A custom
// endpoint targets S3-compatible services such as MinIO.
func New(ctx context.Context, cfg config.ObjectStoreConfig, logger *slog.Logger) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading object store credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithAPI(client, cfg.Bucket, cfg.Prefix, logger), nil
}

// NewWithAPI returns a store over an existing client.
func NewWithAPI(api API, bucket, prefix string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: api, bucket: bucket, prefix: prefix, logger: logger}
}

func (s *Store) Name() string { return Name }

// Store uploads the record. PutObject is atomic, so a failure never leaves
// a partial object and no receipt is returned.
func (s *Store) Store(ctx context.Context, layer domain.TransformedLayer) (domain.Receipt, error) {
	data, err := storage.Encode(layer)
	if err != nil {
		return domain.Receipt{}, err
	}

	key := s.objectKey(layer)
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
		Metadata: map[string]string{
			"trace-id": layer.TraceID.String(),
			"tag":      layer.Tag,
		},
	})
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("putting s3://%s/%s: %w", s.bucket, key, err)
	}
	return domain.Receipt{Backend: Name, Key: key, Size: len(data)}, nil
}

// Remove deletes the object. S3 reports success for a missing key.
func (s *Store) Remove(ctx context.Context, receipt domain.Receipt) error {
	if receipt.IsZero() {
		return nil
	}
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(receipt.Key),
	}); err != nil {
		return fmt.Errorf("deleting s3://%s/%s: %w", s.bucket, receipt.Key, err)
	}
	s.logger.DebugContext(ctx, "object removed",
		slog.String("bucket", s.bucket),
		slog.String("key", receipt.Key),
	)
	return nil
}

// HealthCheck verifies the bucket exists and is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	if _, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("%s: bucket %s: %w", Name, s.bucket, err)
	}
	return nil
}

func (s *Store) objectKey(layer domain.TransformedLayer) string {
	return path.Join(s.prefix, storage.Key(layer)+".json")
}
