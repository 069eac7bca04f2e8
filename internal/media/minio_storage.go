package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/config"
)

// objectClient is the subset of *minio.Client the storage uses.
type objectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioStorage stores uploads in one bucket under "<file type>/<uuid><ext>".
// The object key is the public id.
type MinioStorage struct {
	client    objectClient
	bucket    string
	publicURL string
	logger    *zap.Logger
}

var _ common.ObjectStorage = (*MinioStorage)(nil)

// NewMinioStorage connects and creates the bucket when it is missing.
func NewMinioStorage(ctx context.Context, cfg config.MinioConfig, logger *zap.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: "us-east-1"}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("created media bucket", zap.String("bucket", cfg.Bucket))
	}
	return newMinioStorage(client, cfg.Bucket, cfg.PublicURL, logger), nil
}

func newMinioStorage(client objectClient, bucket, publicURL string, logger *zap.Logger) *MinioStorage {
	return &MinioStorage{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

func (m *MinioStorage) Upload(ctx context.Context, upload *common.Upload) (*common.StoredObject, error) {
	fileType := upload.FileType()
	contentType := upload.ContentType
	if contentType == "" {
		contentType = common.ContentTypeFor(upload.Filename)
	}
	key := path.Join(fileType.String(), uuid.NewString()+strings.ToLower(filepath.Ext(upload.Filename)))

	size := upload.Size
	if size <= 0 {
		size = -1
	}
	info, err := m.client.PutObject(ctx, m.bucket, key, upload.Body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}
	m.logger.Debug("object stored", zap.String("bucket", m.bucket), zap.String("key", key), zap.Int64("size", info.Size))
	return &common.StoredObject{
		ID:       key,
		URL:      m.publicURL + "/" + m.bucket + "/" + key,
		Size:     info.Size,
		FileType: fileType,
	}, nil
}

// Delete succeeds for keys that no longer exist.
func (m *MinioStorage) Delete(ctx context.Context, id string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove object %s: %w", id, err)
	}
	return nil
}
