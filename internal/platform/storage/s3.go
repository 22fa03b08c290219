package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink writes generated images to an S3 bucket.
type S3Sink struct {
	client        s3API
	bucket        string
	prefix        string
	publicBaseURL string
}

// NewS3Sink loads the default AWS credential chain and binds a sink to bucket. An empty
// publicBaseURL yields virtual-hosted bucket URLs.
func NewS3Sink(ctx context.Context, bucket, region, publicBaseURL string) (*S3Sink, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errInvalidBucket
	}
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return newS3Sink(s3.NewFromConfig(cfg), bucket, cfg.Region, publicBaseURL), nil
}

func newS3Sink(client s3API, bucket, region, publicBaseURL string) *S3Sink {
	if strings.TrimSpace(publicBaseURL) == "" {
		if region == "" {
			publicBaseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
		} else {
			publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
		}
	}
	return &S3Sink{client: client, bucket: bucket, prefix: defaultObjectPrefix, publicBaseURL: publicBaseURL}
}

// Put implements imagegen.Sink. Existing objects are overwritten.
func (s *S3Sink) Put(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	key, err := objectKey(s.prefix, name)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(mimeType),
		CacheControl: aws.String("public, max-age=86400"),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put s3://%s/%s: %w", s.bucket, key, err)
	}
	return publicURL(s.publicBaseURL, key), nil
}
