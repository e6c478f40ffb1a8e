package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"inkwell/internal/config"
	"inkwell/internal/models"
)

// ObjectStorage stores post images and hands back a public URL for them.
type ObjectStorage interface {
	UploadImage(ctx context.Context, fileName, contentType string, file io.Reader, size int64) (string, error)
	DeleteImage(ctx context.Context, objectName string) error
}

// allowedImageTypes is the content-type allowlist for uploads.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

const maxImageSize = 10 << 20 // 10 MiB

type MinIOStorage struct {
	client *minio.Client
	bucket string
	useSSL bool
	host   string
}

func NewMinIOStorage(ctx context.Context, cfg *config.Config) (*MinIOStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to object storage: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %q: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %q: %w", cfg.MinioBucket, err)
		}
	}

	return &MinIOStorage{
		client: client,
		bucket: cfg.MinioBucket,
		useSSL: cfg.MinioUseSSL,
		host:   cfg.MinioEndpoint,
	}, nil
}

// UploadImage stores the file under a generated object name and returns the
// URL to serve it from. Rejects anything outside the image allowlist.
func (s *MinIOStorage) UploadImage(ctx context.Context, fileName, contentType string, file io.Reader, size int64) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", models.NewValidationError("Only JPEG, PNG, GIF and WebP images are allowed")
	}
	if size > maxImageSize {
		return "", models.NewValidationError("Image must be 10 MB or smaller")
	}

	now := time.Now()
	objectName := fmt.Sprintf("posts/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, file, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-filename": fileName,
			"uploaded-at":       now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	return s.objectURL(objectName), nil
}

func (s *MinIOStorage) DeleteImage(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

func (s *MinIOStorage) objectURL(objectName string) string {
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.host, s.bucket, objectName)
}
