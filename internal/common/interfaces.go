package common

import (
	"context"
	"io"
)

//go:generate mockgen -destination=mock_object_storage.go -package=common gotube/internal/common ObjectStorage

// ObjectStorage stores uploaded media; ids are opaque to callers.
type ObjectStorage interface {
	Upload(ctx context.Context, upload *Upload) (*StoredObject, error)
	Delete(ctx context.Context, id string) error
}

type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileType is the detected kind of the upload.
func (u *Upload) FileType() MediaFileType {
	return DetectFileType(u.ContentType, u.Filename)
}

type StoredObject struct {
	ID       string        `json:"publicId"`
	URL      string        `json:"url"`
	Size     int64         `json:"-"`
	FileType MediaFileType `json:"-"`
}
