package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"dispatch-console/config"
)

// MinioResolver issues time-limited presigned GET links against an
// S3-compatible object store.
type MinioResolver struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func NewMinioResolver(cfg *config.AppConfig) (*MinioResolver, error) {
	sc := cfg.Storage
	if sc.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint not configured")
	}
	client, err := minio.New(sc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
		Secure: sc.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	ttl := cfg.Reports.SignedURLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MinioResolver{client: client, bucket: sc.Bucket, ttl: ttl}, nil
}

func (m *MinioResolver) SignedURL(ctx context.Context, objectPath string) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", FileName(objectPath)))
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectPath, m.ttl, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
