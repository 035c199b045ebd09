package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"microblogTTS/internal/config"
)

// Storage keeps generated audio objects.
type Storage interface {
	PutAudio(ctx context.Context, objectName string, data []byte, metadata map[string]string) (string, error)
	Exists(ctx context.Context, objectName string) (bool, error)
	ObjectURL(objectName string) string
	HealthCheck(ctx context.Context) error
}

type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOClient connects and makes sure the bucket exists.
func NewMinIOClient(ctx context.Context, cfg config.MinIO) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки бакета %s: %w", cfg.BucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("ошибка создания бакета %s: %w", cfg.BucketName, err)
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint
	}

	return &MinIOClient{
		client:    client,
		bucket:    cfg.BucketName,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (m *MinIOClient) PutAudio(ctx context.Context, objectName string, data []byte, metadata map[string]string) (string, error) {
	meta := map[string]string{"uploaded-at": time.Now().UTC().Format(time.RFC3339)}
	for k, v := range metadata {
		meta[k] = v
	}

	_, err := m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  "audio/mpeg",
			UserMetadata: meta,
		})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки в MinIO: %w", err)
	}

	return m.ObjectURL(objectName), nil
}

func (m *MinIOClient) Exists(ctx context.Context, objectName string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("ошибка проверки объекта в MinIO: %w", err)
	}
	return true, nil
}

func (m *MinIOClient) ObjectURL(objectName string) string {
	return m.publicURL + "/" + m.bucket + "/" + (&url.URL{Path: objectName}).EscapedPath()
}

func (m *MinIOClient) HealthCheck(ctx context.Context) error {
	if _, err := m.client.BucketExists(ctx, m.bucket); err != nil {
		return fmt.Errorf("minio: %w", err)
	}
	return nil
}
