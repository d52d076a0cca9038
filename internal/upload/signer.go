// Package upload issues S3 pre-signed PUT URLs so browsers can upload
// avatars and logos straight to the bucket.
package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Signer produces a pre-signed PUT URL for one object key.
type Signer interface {
	SignPut(ctx context.Context, key, contentType string) (string, error)
}

// S3Signer signs requests against a single bucket.
type S3Signer struct {
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

// S3Options are the settings S3Signer needs. AccessKeyID and Region are
// independent values; an empty AccessKeyID falls back to the default AWS
// credential chain.
type S3Options struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Expiry          time.Duration
}

// NewS3Signer loads an AWS config and builds a presign client.
func NewS3Signer(ctx context.Context, opts S3Options) (*S3Signer, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	expiry := opts.Expiry
	if expiry <= 0 {
		expiry = 60 * time.Second
	}
	return &S3Signer{
		presign: s3.NewPresignClient(s3.NewFromConfig(awsCfg)),
		bucket:  opts.Bucket,
		expiry:  expiry,
	}, nil
}

// Bucket returns the configured bucket name.
func (s *S3Signer) Bucket() string { return s.bucket }

// SignPut returns a URL that allows a public-read PUT of key with the given
// content type until the expiry elapses.
func (s *S3Signer) SignPut(ctx context.Context, key, contentType string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, nil
}
