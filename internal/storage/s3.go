package storage

import (
	"bytes"
	"context"
	"io"
	"time"

	"course-material-service/internal/config"
	"course-material-service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BlobStore stores opaque byte blobs by key. The S3 implementation is the
// production adapter; tests substitute in-memory fakes.
type BlobStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// StorageOpConnect marks client construction failures at startup.
const StorageOpConnect models.StorageOp = "connect"

// S3BlobStore implements BlobStore against an S3-compatible bucket.
type S3BlobStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3BlobStore(ctx context.Context, cfg *config.Config) (*S3BlobStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, &models.StorageError{Op: StorageOpConnect, Err: err}
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3BlobStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3BucketName,
	}, nil
}

func (s *S3BlobStore) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return &models.StorageError{Op: models.StorageOpUpload, Key: key, Err: err}
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return &models.StorageError{Op: models.StorageOpUpload, Key: key, Err: err}
	}
	return nil
}

func (s *S3BlobStore) Download(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, &models.StorageError{Op: models.StorageOpDownload, Key: key, Err: err}
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &models.StorageError{Op: models.StorageOpDownload, Key: key, Err: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &models.StorageError{Op: models.StorageOpDownload, Key: key, Err: err}
	}
	return data, nil
}

func (s *S3BlobStore) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return &models.StorageError{Op: models.StorageOpDelete, Key: key, Err: err}
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &models.StorageError{Op: models.StorageOpDelete, Key: key, Err: err}
	}
	return nil
}

func (s *S3BlobStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", &models.StorageError{Op: models.StorageOpURL, Key: key, Err: err}
	}
	ttl, err := ValidateTTL(ttl)
	if err != nil {
		return "", &models.StorageError{Op: models.StorageOpURL, Key: key, Err: err}
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", &models.StorageError{Op: models.StorageOpURL, Key: key, Err: err}
	}
	return req.URL, nil
}
