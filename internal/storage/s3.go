package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store uploads artifacts to a bucket. Storage paths are s3://bucket/key
// URLs. A custom endpoint (MinIO and friends) comes from S3_ENDPOINT_URL.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store builds an S3Store against bucket, nesting keys under prefix
// when non-empty. Credentials and region come from the default AWS config
// chain.
func NewS3Store(ctx context.Context, bucket, prefix string) (*S3Store, error) {
	var optFns []func(*awsconfig.LoadOptions) error

	if endpoint, ok := os.LookupEnv("S3_ENDPOINT_URL"); ok {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               endpoint,
				HostnameImmutable: true,
			}, nil
		})
		optFns = append(optFns, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *S3Store) Save(ctx context.Context, filename string, data []byte) (string, error) {
	key := objectKey(s.prefix, filename)

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(http.DetectContentType(data)),
	}); err != nil {
		return "", fmt.Errorf("%w: upload s3://%s/%s: %v", ErrPersistence, s.bucket, key, err)
	}

	return objectURL(s.bucket, key), nil
}

func (s *S3Store) Load(ctx context.Context, storagePath string) ([]byte, error) {
	key, err := keyFromURL(s.bucket, storagePath)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %v", ErrPersistence, storagePath, err)
	}
	defer result.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, storagePath, err)
	}
	return buf.Bytes(), nil
}

func objectKey(prefix, filename string) string {
	if prefix == "" {
		return filename
	}
	return path.Join(prefix, filename)
}

func objectURL(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

func keyFromURL(bucket, storagePath string) (string, error) {
	want := fmt.Sprintf("s3://%s/", bucket)
	if !strings.HasPrefix(storagePath, want) {
		return "", fmt.Errorf("%w: %s is not in bucket %s", ErrNotFound, storagePath, bucket)
	}
	return strings.TrimPrefix(storagePath, want), nil
}
