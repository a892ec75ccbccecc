package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3GetObjectAPI is the slice of the S3 client the source needs.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source serves s3://bucket/key sources. The key's extension picks the decoder.
type S3Source struct {
	client S3GetObjectAPI
}

// NewS3Source builds a source from the default AWS credential chain.
func NewS3Source(ctx context.Context, region string) (*S3Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for S3 source: %w", err)
	}
	return &S3Source{client: s3.NewFromConfig(cfg)}, nil
}

// NewS3SourceWithClient wraps an existing client.
func NewS3SourceWithClient(client S3GetObjectAPI) *S3Source {
	return &S3Source{client: client}
}

func (s *S3Source) FetchTable(ctx context.Context, ref string) (*Table, error) {
	bucket, key, ok := strings.Cut(ref, "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: expected s3://bucket/key, got %q", ErrSourceNotFound, ref)
	}

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrSourceNotFound, bucket, key)
		}
		return nil, fmt.Errorf("S3 GetObject %s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading S3 object body: %w", err)
	}

	return DecodeTable(key, bytes.NewReader(body))
}
