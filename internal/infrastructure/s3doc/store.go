// Package s3doc persists the document as a single S3 object. Useful when the
// API runs on ephemeral compute and the flat file needs to outlive the host.
package s3doc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/otpgate/internal/config"
	"github.com/otpgate/internal/domain"
)

// Store reads and writes the whole document to one object in a bucket.
type Store struct {
	client *s3.Client
	bucket string
	key    string
}

// NewClient creates an S3 client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewClient(cfg *config.Config) *s3.Client {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		panic("failed to load AWS config for S3: " + err.Error())
	}

	clientOpts := []func(*s3.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsCfg, clientOpts...)
}

func New(client *s3.Client, bucket, key string) *Store {
	return &Store{client: client, bucket: bucket, key: key}
}

// Init writes an empty document when the object does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("head s3://%s/%s: %v: %w", s.bucket, s.key, err, domain.ErrStorage)
	}
	return s.Save(ctx, domain.NewDocument())
}

func (s *Store) Load(ctx context.Context) (*domain.Document, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %v: %w", s.bucket, s.key, err, domain.ErrStorage)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %v: %w", s.bucket, s.key, err, domain.ErrStorage)
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode s3://%s/%s: %v: %w", s.bucket, s.key, err, domain.ErrStorage)
	}
	return &doc, nil
}

func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode document: %v: %w", err, domain.ErrStorage)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %v: %w", s.bucket, s.key, err, domain.ErrStorage)
	}
	return nil
}
