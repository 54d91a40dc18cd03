package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	appconfig "estate_e2e/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ArtifactUploader ships failure artifacts (screenshots, page dumps) off-box
// and returns the key they were stored under.
type ArtifactUploader interface {
	Upload(ctx context.Context, run uuid.UUID, scenario, name string, data []byte, contentType string) (string, error)
}

// NoopUploader is used when no bucket is configured.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, uuid.UUID, string, string, []byte, string) (string, error) {
	return "", nil
}

// S3Uploader uploads artifacts to S3-compatible storage.
type S3Uploader struct {
	client *s3.Client
	cfg    appconfig.ArtifactsConfig
}

func NewS3Uploader(ctx context.Context, cfg appconfig.ArtifactsConfig) (*S3Uploader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Uploader{client: client, cfg: cfg}, nil
}

// NewUploader returns an S3 uploader when artifacts are configured and a
// no-op otherwise.
func NewUploader(ctx context.Context, cfg appconfig.ArtifactsConfig) (ArtifactUploader, error) {
	if !cfg.Enabled() {
		return NoopUploader{}, nil
	}
	return NewS3Uploader(ctx, cfg)
}

func (u *S3Uploader) Upload(ctx context.Context, run uuid.UUID, scenario, name string, data []byte, contentType string) (string, error) {
	key := ArtifactKey(time.Now(), run, scenario, name)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}

// PublicURL returns the public URL for a stored key.
func (u *S3Uploader) PublicURL(key string) string {
	return PublicURL(u.cfg, key)
}

func PublicURL(cfg appconfig.ArtifactsConfig, key string) string {
	if cfg.Endpoint != "" && strings.Contains(cfg.Endpoint, "digitaloceanspaces.com") {
		// DO Spaces: https://{bucket}.{region}.digitaloceanspaces.com/{key}
		host := strings.TrimPrefix(cfg.Endpoint, "https://")
		return fmt.Sprintf("https://%s.%s/%s", cfg.Bucket, host, key)
	}
	if cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket, key)
	}
	// AWS S3: https://{bucket}.s3.{region}.amazonaws.com/{key}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, cfg.Region, key)
}

// ArtifactKey lays artifacts out by day, run and scenario:
// e2e/2026-10-15/<run>/<scenario>/<name>.
func ArtifactKey(at time.Time, run uuid.UUID, scenario, name string) string {
	return path.Join("e2e", at.UTC().Format("2006-01-02"), run.String(), keySegment(scenario), keySegment(name))
}

func keySegment(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
