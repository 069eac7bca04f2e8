package common

import (
	"path/filepath"
	"strings"
)

// MediaFileType is the coarse kind of an uploaded media object
type MediaFileType string

const (
	MediaFileTypeImage   MediaFileType = "image"
	MediaFileTypeVideo   MediaFileType = "video"
	MediaFileTypeUnknown MediaFileType = "unknown"
)

func (mft MediaFileType) String() string {
	return string(mft)
}

func (mft MediaFileType) IsValid() bool {
	return mft == MediaFileTypeImage || mft == MediaFileTypeVideo
}

// DetectFileType looks at the MIME type first and falls back to the file extension.
func DetectFileType(mimeType, filename string) MediaFileType {
	lowerMimeType := strings.ToLower(mimeType)
	if strings.HasPrefix(lowerMimeType, "image/") {
		return MediaFileTypeImage
	}
	if strings.HasPrefix(lowerMimeType, "video/") {
		return MediaFileTypeVideo
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return MediaFileTypeImage
	case ".mp4", ".webm", ".mov", ".mkv", ".avi":
		return MediaFileTypeVideo
	}
	return MediaFileTypeUnknown
}

// ContentTypeFor maps a stored filename back to a response Content-Type.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}
