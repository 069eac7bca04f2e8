package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gotube/internal/common"
)

var ErrMediaNotFound = errors.New("media file not found")

// MediaStorage keeps uploaded objects in GridFS and serves them back through
// the media server at baseURL/{id}.
type MediaStorage struct {
	gridFS  *gridfs.Bucket
	baseURL string
}

var _ common.ObjectStorage = (*MediaStorage)(nil)

func NewMediaStorage(mongoClient *MongoClient, baseURL string) *MediaStorage {
	return &MediaStorage{
		gridFS:  mongoClient.GridFS,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type MediaFile struct {
	ID          string               `json:"id"`
	Filename    string               `json:"filename"`
	Size        int64                `json:"size"`
	FileType    common.MediaFileType `json:"file_type"`
	ContentType string               `json:"content_type"`
	UploadedAt  time.Time            `json:"uploaded_at"`
}

func (ms *MediaStorage) URL(id string) string {
	return ms.baseURL + "/" + id
}

func (ms *MediaStorage) Upload(ctx context.Context, upload *common.Upload) (*common.StoredObject, error) {
	fileType := upload.FileType()
	contentType := upload.ContentType
	if contentType == "" {
		contentType = common.ContentTypeFor(upload.Filename)
	}
	metadata := bson.M{
		"file_type":    fileType.String(),
		"content_type": contentType,
		"uploaded_at":  time.Now().UTC(),
	}

	stream, err := ms.gridFS.OpenUploadStream(upload.Filename, options.GridFSUpload().SetMetadata(metadata))
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		stream.SetWriteDeadline(deadline)
	}

	size, err := io.Copy(stream, upload.Body)
	if err != nil {
		stream.Abort()
		return nil, fmt.Errorf("file copy failed: %w", err)
	}
	// Close writes the final chunk and the files document
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	id := stream.FileID.(primitive.ObjectID).Hex()
	return &common.StoredObject{
		ID:       id,
		URL:      ms.URL(id),
		Size:     size,
		FileType: fileType,
	}, nil
}

// Download opens the stored object; the caller closes the reader.
func (ms *MediaStorage) Download(ctx context.Context, fileID string) (io.ReadCloser, *MediaFile, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, ErrMediaNotFound
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, ErrMediaNotFound
		}
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		stream.SetReadDeadline(deadline)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	contentType := getStringFromMap(metadata, "content_type")
	if contentType == "" {
		contentType = common.ContentTypeFor(fileInfo.Name)
	}
	return stream, &MediaFile{
		ID:          fileID,
		Filename:    fileInfo.Name,
		Size:        fileInfo.Length,
		FileType:    common.MediaFileType(getStringFromMap(metadata, "file_type")),
		ContentType: contentType,
		UploadedAt:  fileInfo.UploadDate,
	}, nil
}

// Delete is idempotent: an id that is already gone is not an error, so a
// reconciled cascade step can run it again.
func (ms *MediaStorage) Delete(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("invalid file ID: %w", err)
	}
	if err := ms.gridFS.Delete(objectID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return err
	}
	return nil
}

func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
