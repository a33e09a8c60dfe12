package infra

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/eduforge/edu-file-gateway/config"
	"github.com/eduforge/edu-file-gateway/fault"
	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient is the object backend adapter over any S3-compatible
// store. One bucket holds every object; keys carry the directory
// layout.
type MinioClient struct {
	Client   *minio.Client
	Admin    *madmin.AdminClient
	Bucket   string
	Endpoint string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	accessKey := cfg.Minio.AccessKey
	if accessKey == "" {
		panic("MinIO access key is not configured")
	}

	secretKey := cfg.Minio.SecretKey
	if secretKey == "" {
		panic("MinIO secret key is not configured")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	adminClient, err := madmin.New(endpoint, accessKey, secretKey, cfg.Minio.UseSSL)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO admin client: %v", err))
	}

	return &MinioClient{
		Client:   client,
		Admin:    adminClient,
		Bucket:   cfg.Minio.Bucket,
		Endpoint: endpoint,
	}
}

// EnsureBucket creates the gateway bucket if it doesn't exist.
func (m *MinioClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := m.Client.MakeBucket(ctx, m.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

func (m *MinioClient) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := m.Client.PutObject(ctx, m.Bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// StatObject returns the size of an object, or a not-found fault.
func (m *MinioClient) StatObject(ctx context.Context, key string) (int64, error) {
	info, err := m.Client.StatObject(ctx, m.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return 0, fault.Newf(fault.KindNotFound, "object %s does not exist", key)
		}
		return 0, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return info.Size, nil
}

// GetObject opens an object for streaming and returns its size.
func (m *MinioClient) GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	obj, err := m.Client.GetObject(ctx, m.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get object %s: %w", key, err)
	}

	// GetObject is lazy; Stat forces the request so missing keys
	// surface here instead of mid-stream.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNoSuchKey(err) {
			return nil, 0, fault.Newf(fault.KindNotFound, "object %s does not exist", key)
		}
		return nil, 0, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	return obj, info.Size, nil
}

func (m *MinioClient) RemoveObject(ctx context.Context, key string) error {
	err := m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

// PresignedGetURL generates a time-bounded signed URL for direct
// object access, bypassing the gateway.
func (m *MinioClient) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	signed, err := m.Client.PresignedGetObject(ctx, m.Bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return signed.String(), nil
}

// Health probes the storage backend through the admin API.
func (m *MinioClient) Health(ctx context.Context) error {
	_, err := m.Admin.ServerInfo(ctx)
	if err != nil {
		return fmt.Errorf("storage backend unreachable: %w", err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
