// Package images lists website assets from the asset bucket and hands out
// time-limited presigned URLs for the ones safe to serve.
package images

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/TaraScho/gameday-demo-app-services/pkg/config"
)

// Seams for the AWS SDK so tests can run without a bucket.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	listObjects = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		return c.ListObjectsV2(ctx, in)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Service produces presigned URLs for website images.
type Service struct {
	cfg    config.ImagesConfig
	logger *slog.Logger
}

// New constructs a Service.
func New(cfg config.ImagesConfig, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// ListWebsiteImages lists the asset bucket and returns presigned GET URLs
// for every servable image key.
func (s *Service) ListWebsiteImages(ctx context.Context) ([]string, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, fmt.Errorf("configure s3 client: %w", err)
	}
	presignClient := newS3PresignClient(client)

	out, err := listObjects(client, ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.AssetBucket),
	})
	if err != nil {
		return nil, fmt.Errorf("list bucket %s: %w", s.cfg.AssetBucket, err)
	}

	urls := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if !servableKey(key) {
			continue
		}
		req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.cfg.AssetBucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(s.cfg.PresignExpiry))
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", key, err)
		}
		urls = append(urls, req.URL)
	}

	s.logger.Info("listed website images", "bucket", s.cfg.AssetBucket, "count", len(urls))
	return urls, nil
}

// servableKey keeps png assets and drops anything touched by the ransomware
// incident markers.
func servableKey(key string) bool {
	if strings.Contains(key, "ENCRYPTED") || strings.Contains(key, "ransom") {
		return false
	}
	return strings.Contains(key, "png")
}

func (s *Service) getClient() (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.cfg.S3Region),
	}
	if s.cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.S3AccessKey, s.cfg.S3SecretKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.S3BaseEndpoint)
		}
	})
	return client, nil
}
