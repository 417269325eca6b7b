// Package s3 loads the house seed CSV from an S3-compatible object store
// (AWS S3 or MinIO).
package s3

import (
	"context"
	"fmt"
	"housingapi/internal/infra/seed/csvfile"
	"housingapi/pkg/domain"
	"os"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source reads one CSV object from a bucket.
type Source struct {
	client *s3.Client
	bucket string
	key    string
}

// Config holds explicit construction parameters. Credentials fall back to
// the default AWS chain when the static keys are empty.
type Config struct {
	Region          string
	Bucket          string
	Key             string
	Endpoint        string // optional; enables a custom endpoint such as MinIO
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool
}

// Environment variables:
//   HOUSING_S3_BUCKET=<bucket> (required)
//   HOUSING_S3_KEY=<object key> (default house_pricing.csv)
//   HOUSING_S3_REGION=<region> (default us-east-1)
//   HOUSING_S3_ENDPOINT=<url> (optional, for MinIO)
//   HOUSING_S3_PATH_STYLE=true|false (default false)
//   AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)

// DefaultKey is the object key read when none is configured.
const DefaultKey = "house_pricing.csv"

// ConfigFromEnv reads the HOUSING_S3_* variables.
func ConfigFromEnv() Config {
	return Config{
		Bucket:    os.Getenv("HOUSING_S3_BUCKET"),
		Key:       os.Getenv("HOUSING_S3_KEY"),
		Region:    os.Getenv("HOUSING_S3_REGION"),
		Endpoint:  os.Getenv("HOUSING_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("HOUSING_S3_PATH_STYLE"), "true"),
	}
}

// New creates an S3 source from Config.
func New(ctx context.Context, cfg Config, optFns ...func(*s3.Options)) (*Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	opts := append([]func(*s3.Options){func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)
	client := s3.NewFromConfig(awsCfg, opts...)
	return NewWithClient(client, cfg.Bucket, cfg.Key), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *s3.Client, bucket, key string) *Source {
	if key == "" {
		key = DefaultKey
	}
	return &Source{client: client, bucket: bucket, key: key}
}

// Location returns the s3:// URI of the seed object.
func (s *Source) Location() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

// Load downloads and decodes the seed object.
func (s *Source) Load(ctx context.Context) ([]domain.House, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.Location(), err)
	}
	defer func() { _ = out.Body.Close() }()
	houses, err := csvfile.Decode(out.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Location(), err)
	}
	return houses, nil
}
