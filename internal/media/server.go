// Package media holds the object storage backends and the HTTP server that
// streams GridFS-stored media back to clients.
package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/dbmongo"
)

// FileSource opens stored media by id.
type FileSource interface {
	Download(ctx context.Context, fileID string) (io.ReadCloser, *dbmongo.MediaFile, error)
}

type HTTPServer struct {
	files  FileSource
	logger *zap.Logger
	router *mux.Router
}

func NewHTTPServer(files FileSource, logger *zap.Logger) *HTTPServer {
	s := &HTTPServer{files: files, logger: logger, router: mux.NewRouter()}
	s.router.Use(common.RequestLogger(logger))
	s.router.HandleFunc("/media/{fileId}", s.serveFile).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	return s
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := common.PathVar(r, "fileId")
	reader, file, err := s.files.Download(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, dbmongo.ErrMediaNotFound) {
			common.WriteError(w, s.logger, common.NotFoundError("file not found"))
			return
		}
		common.WriteError(w, s.logger, common.StorageError("failed to open file", err))
		return
	}
	defer reader.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = common.ContentTypeFor(file.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")

	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Warn("error streaming file", zap.String("fileId", fileID), zap.Error(err))
	}
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "media server is healthy")
}
