package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Zinaxy/HailAndCottonPrac/internal/ports"
)

// S3API is the subset of the S3 client used by the snapshot store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds construction parameters for an S3 or S3-compatible (MinIO) backend.
type S3Config struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string // optional, enables a custom endpoint
	PathStyle bool
}

// S3SnapshotStore keeps the snapshot as a single newline-delimited object.
// A PutObject replaces the object atomically.
type S3SnapshotStore struct {
	Client S3API
	Bucket string
	Key    string
}

func NewS3SnapshotStore(client S3API, bucket, key string) *S3SnapshotStore {
	if key == "" {
		key = DefaultFilePath
	}
	return &S3SnapshotStore{Client: client, Bucket: bucket, Key: key}
}

// OpenS3 builds an S3 client from the default AWS credential chain.
func OpenS3(ctx context.Context, cfg S3Config) (*S3SnapshotStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 snapshot: bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("s3 snapshot: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewS3SnapshotStore(client, cfg.Bucket, cfg.Key), nil
}

var _ ports.SnapshotStore = (*S3SnapshotStore)(nil)

func (s *S3SnapshotStore) Load(ctx context.Context) ([]string, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.Bucket, Key: &s.Key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("s3 snapshot: get s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 snapshot: read s3://%s/%s: %w", s.Bucket, s.Key, err)
	}

	text := strings.TrimSuffix(string(body), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func (s *S3SnapshotStore) Replace(ctx context.Context, lines []string) error {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.Bucket,
		Key:         &s.Key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("s3 snapshot: put s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	return nil
}
