// Package storage uploads product images to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrForeignURL is returned when deleting an object that this bucket did not serve
var ErrForeignURL = errors.New("file URL does not belong to this bucket")

// Storage stores encoded files and returns their public URL
type Storage interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// S3Config holds object storage connection settings
type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicURL     string
	KeyPrefix     string
	UploadTimeout time.Duration
}

// S3Storage implements Storage on top of any S3-compatible endpoint (AWS, R2, MinIO)
type S3Storage struct {
	client        *s3.Client
	bucket        string
	publicURL     string
	keyPrefix     string
	uploadTimeout time.Duration
}

// NewS3Storage creates an S3 client using static credentials
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load object storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	prefix := strings.Trim(cfg.KeyPrefix, "/")
	if prefix == "" {
		prefix = "products"
	}

	return &S3Storage{
		client:        client,
		bucket:        cfg.Bucket,
		publicURL:     strings.TrimSuffix(cfg.PublicURL, "/"),
		keyPrefix:     prefix,
		uploadTimeout: timeout,
	}, nil
}

// Upload stores data under a random key and returns its public URL
func (s *S3Storage) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("%s/%s%s", s.keyPrefix, uuid.NewString(), extensionFor(contentType))

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	_, err := s.client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return s.publicURL + "/" + key, nil
}

// Delete removes the object behind a URL previously returned by Upload
func (s *S3Storage) Delete(ctx context.Context, fileURL string) error {
	if !strings.HasPrefix(fileURL, s.publicURL+"/") {
		return ErrForeignURL
	}
	key := strings.TrimPrefix(fileURL, s.publicURL+"/")
	if key == "" {
		return ErrForeignURL
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
