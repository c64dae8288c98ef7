package usage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"csvchat/internal/utils"
)

// S3Sink ships usage batches to S3 as JSON Lines objects, one object per
// batch, partitioned by date.
type S3Sink struct {
	client  *s3.Client
	bucket  string
	prefix  string
	podName string
	logger  *utils.Logger
}

// NewS3Sink creates an S3 sink using the default AWS credential chain.
func NewS3Sink(ctx context.Context, bucket, region, prefix, podName string) (*S3Sink, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Sink{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		prefix:  prefix,
		podName: podName,
		logger:  utils.NewLogger("usage-s3"),
	}, nil
}

// WriteBatch uploads one JSONL object for the batch and returns nil on
// success. Key layout: <prefix>2026/08/31/gateway-0-20260831-143022-123456789.jsonl
func (s *S3Sink) WriteBatch(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	key := s.objectKey(time.Now())

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, rec := range records {
		if err := encoder.Encode(rec); err != nil {
			s.logger.Error("failed to encode usage record", "error", err)
			continue
		}
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload usage batch to S3: %w", err)
	}

	s.logger.Info("wrote usage batch to S3", "key", key, "count", len(records), "bytes", buf.Len())
	return nil
}

func (s *S3Sink) objectKey(now time.Time) string {
	return fmt.Sprintf("%s%04d/%02d/%02d/%s-%s-%d.jsonl",
		s.prefix,
		now.Year(),
		now.Month(),
		now.Day(),
		s.podName,
		now.Format("20060102-150405"),
		now.Nanosecond(),
	)
}
