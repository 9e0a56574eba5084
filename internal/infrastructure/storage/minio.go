package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

const presentationPrefix = "presentations/"

// MinIOUploader stores rendered presentations in a MinIO bucket. It
// is the upload path when STORAGE_MODE=minio; the default path goes
// through the backend's presigned-URL service instead.
type MinIOUploader struct {
	client *minio.Client
	bucket string
}

// NewMinIOUploader creates the client and ensures the bucket exists.
func NewMinIOUploader(cfg *config.StorageConfig) (*MinIOUploader, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	u := &MinIOUploader{client: minioClient, bucket: cfg.BucketName}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := u.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return u, nil
}

func (u *MinIOUploader) ensureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Upload stores a rendered deck under the presentations/ prefix.
func (u *MinIOUploader) Upload(ctx context.Context, objectName string, data []byte) error {
	_, err := u.client.PutObject(ctx, u.bucket, presentationPrefix+objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

// PresignedGetURL returns a temporary download URL for an uploaded
// presentation, for callers that want to hand the artifact out.
func (u *MinIOUploader) PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	presigned, err := u.client.PresignedGetObject(ctx, u.bucket, presentationPrefix+objectName, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectName, err)
	}
	return presigned.String(), nil
}
