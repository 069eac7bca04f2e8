package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"gotube/internal/dbmongo"
)

type fakeFiles map[string]string

func (f fakeFiles) Download(_ context.Context, id string) (io.ReadCloser, *dbmongo.MediaFile, error) {
	if id == "broken" {
		return nil, nil, errors.New("connection reset")
	}
	body, ok := f[id]
	if !ok {
		return nil, nil, dbmongo.ErrMediaNotFound
	}
	return io.NopCloser(strings.NewReader(body)), &dbmongo.MediaFile{
		ID:       id,
		Filename: id + ".png",
		Size:     int64(len(body)),
	}, nil
}

func TestHTTPServer(t *testing.T) {
	srv := NewHTTPServer(fakeFiles{"abc": "pixels"}, zap.NewNop())

	tests := []struct {
		name        string
		path        string
		status      int
		contentType string
		body        string
	}{
		{"serves file", "/media/abc", http.StatusOK, "image/png", "pixels"},
		{"missing file", "/media/nope", http.StatusNotFound, "application/json", `"file not found"`},
		{"storage failure", "/media/broken", http.StatusInternalServerError, "application/json", `"failed to open file"`},
		{"health", "/health", http.StatusOK, "application/json", `"status":"ok"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}
