// Package s3 provides an S3-compatible blob store. References are
// deterministic public URLs built from the endpoint, bucket and key, so the
// bucket (or the key prefix) is expected to be publicly readable.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	KeyPrefix       string // Optional key prefix inside the bucket
	PublicBaseURL   string // Optional explicit base for public URLs (CDN front)
}

// Backend is an S3-compatible implementation of the storefront.BlobStore interface
type Backend struct {
	client *s3.Client
	config Config
}

// New creates a new S3-compatible storage backend
func New(config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Use default credential chain
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	return &Backend{
		client: s3.NewFromConfig(awsCfg, s3Options...),
		config: config,
	}, nil
}

func (b *Backend) fullKey(objectKey string) string {
	if b.config.KeyPrefix == "" {
		return objectKey
	}
	return strings.TrimSuffix(b.config.KeyPrefix, "/") + "/" + objectKey
}

func (b *Backend) Upload(ctx context.Context, objectKey, mimeType string, reader io.Reader) error {
	uploader := manager.NewUploader(b.client)

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.config.Bucket),
		Key:    aws.String(b.fullKey(objectKey)),
		Body:   reader,
	}
	if mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.config.Bucket),
		Key:    aws.String(b.fullKey(objectKey)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.New("object not found")
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	return result.Body, nil
}

func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.config.Bucket),
		Key:    aws.String(b.fullKey(objectKey)),
	})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (b *Backend) PublicURL(objectKey string) string {
	key := b.fullKey(objectKey)
	if b.config.PublicBaseURL != "" {
		return strings.TrimSuffix(b.config.PublicBaseURL, "/") + "/" + key
	}
	if b.config.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(b.config.Endpoint, "/"), b.config.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.config.Bucket, b.config.Region, key)
}

func (b *Backend) RefToKey(ref string) (string, bool) {
	// PublicURL("") yields the URL base (including any key prefix) for all keys.
	base := b.PublicURL("")
	key, found := strings.CutPrefix(ref, base)
	if !found || key == "" {
		return "", false
	}
	return key, true
}

func isNoSuchKey(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
