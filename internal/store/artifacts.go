package store

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArtifactStore uploads a local file and returns where it can be found.
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// MinIOConfig holds the connection settings for an S3-compatible bucket.
type MinIOConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// MinIO is an ArtifactStore backed by MinIO or any S3-compatible service.
type MinIO struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// NewMinIO connects to the configured endpoint and creates the bucket if it
// does not exist.
func NewMinIO(ctx context.Context, cfg MinIOConfig, logger *slog.Logger) (*MinIO, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("artifact storage needs an endpoint and a bucket")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating object storage client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("created artifact bucket", "bucket", cfg.Bucket)
	}
	return &MinIO{client: cli, bucket: cfg.Bucket, logger: logger}, nil
}

// Upload puts localPath into the bucket under key and returns the object URL.
func (m *MinIO) Upload(ctx context.Context, localPath, key string) (string, error) {
	info, err := m.client.FPutObject(ctx, m.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType(localPath),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", filepath.Base(localPath), err)
	}
	u := *m.client.EndpointURL()
	u.Path = path.Join("/", m.bucket, key)
	m.logger.Debug("uploaded artifact", "key", key, "bytes", info.Size)
	return u.String(), nil
}

// ArtifactKey returns the object key for a file belonging to target name.
func ArtifactKey(name, localPath string) string {
	return path.Join(name, filepath.Base(localPath))
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
