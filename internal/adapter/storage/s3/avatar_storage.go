package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
)

const (
	avatarPrefix  = "avatars/"
	maxAvatarSize = 5 << 20
)

// AvatarStorage stores profile pictures in a MinIO bucket.
type AvatarStorage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

// NewAvatarStorage connects to MinIO and creates the bucket when missing.
func NewAvatarStorage(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) (*AvatarStorage, error) {
	log.Info("Initializing MinIO avatar storage", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket, "use_ssl", cfg.UseSSL)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to make bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("AvatarStorage: bucket created", "bucket", cfg.Bucket)
	}

	return &AvatarStorage{client: client, bucket: cfg.Bucket, logger: log}, nil
}

// Upload stores data under a fresh key keeping the extension of fileName and
// returns the public object URL.
func (s *AvatarStorage) Upload(ctx context.Context, fileName string, data []byte) (string, error) {
	contentType, err := detectImage(data)
	if err != nil {
		s.logger.Warn("AvatarStorage.Upload: rejected file", "file_name", fileName, "size_bytes", len(data), "error", err.Error())
		return "", err
	}

	key := objectKey(fileName)
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("AvatarStorage.Upload: PutObject failed", "bucket", s.bucket, "key", key, "error", err.Error())
		return "", fmt.Errorf("%w: upload %s: %v", domain.ErrUnavailable, key, err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key)
	s.logger.Info("AvatarStorage.Upload: uploaded", "key", info.Key, "size_bytes", info.Size, "url", url)
	return url, nil
}

func objectKey(fileName string) string {
	return avatarPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
}

// detectImage sniffs data and accepts images up to maxAvatarSize.
func detectImage(data []byte) (string, error) {
	if len(data) == 0 || len(data) > maxAvatarSize {
		return "", fmt.Errorf("%w: size %d bytes", domain.ErrInvalidAvatar, len(data))
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: content type %s", domain.ErrInvalidAvatar, contentType)
	}
	return contentType, nil
}
