package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/localnerve/foodgram/internal/models"
)

// S3Options configures an S3 or S3-compatible bucket.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS
	AccessKey string // empty to use the default credential chain
	SecretKey string
	PublicURL string // empty for the virtual-hosted AWS URL
}

// S3 stores blobs in a bucket with public-read objects.
type S3 struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3 builds an S3 client from the options.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := opts.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}

	return &S3{client: client, bucket: opts.Bucket, publicURL: publicURL}, nil
}

func (s *S3) Save(ctx context.Context, prefix string, blob Blob) (models.ImageRef, error) {
	key := NewKey(prefix, blob.ContentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(blob.Data),
		ContentType: aws.String(blob.ContentType),
		ACL:         "public-read",
	})
	if err != nil {
		return models.ImageRef{}, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return models.ImageRef{Key: key, ContentType: blob.ContentType, Size: int64(len(blob.Data))}, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *S3) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.publicURL + "/" + key
}
